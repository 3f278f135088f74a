package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	log.SetPrefix("ft/fit-track-go-api: ")
	log.SetFlags(0)

	// .env is optional: deployed environments inject real env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded, using environment")
	}

	fmt.Println("Starting gin app...")

	pool := getDBPool()
	defer pool.Close()

	h := &Handler{
		db:            pool,
		days:          newDayStore(pool),
		notify:        newLogNotifier(),
		openAIBaseURL: "https://api.openai.com",
	}

	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	router.Run(":" + port)
}

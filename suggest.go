package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

/* ─── Request / Response types ───────────────────────────────────────── */

// suggestRequest is the request body for POST /api/suggest.
type suggestRequest struct {
	Description string `json:"description"`
	Meal        string `json:"meal"`
}

// suggestedMacro is one macro amount in a suggestion, matched back to the
// user's tracked macros by name when possible.
type suggestedMacro struct {
	MacroID string  `json:"macro_id,omitempty"`
	Name    string  `json:"name"`
	Unit    string  `json:"unit"`
	Amount  float64 `json:"amount"`
}

// suggestionResponse is a ready-to-log intake entry draft parsed by the AI.
// Confidence is 1-5 indicating how accurate the estimate is.
type suggestionResponse struct {
	ItemName   string           `json:"item_name"`
	Portion    string           `json:"portion"`
	Calories   int              `json:"calories"`
	Macros     []suggestedMacro `json:"macros"`
	Confidence int              `json:"confidence"`
}

/* ─── OpenAI prompt ──────────────────────────────────────────────────── */

// foodSystemPromptTemplate takes the comma-separated list of the user's
// tracked macro names so the AI only reports amounts we can record.
const foodSystemPromptTemplate = `You are a nutrition assistant. Parse the food description and return a JSON object with:
- "item_name" (string, cleaned up title case)
- "portion" (string, e.g. "1 bowl", "250 g")
- "calories" (integer, total for the full portion)
- "macros" (array of {"name", "unit", "amount"} objects, one per macro from this list only: %s; amounts are totals for the full portion)
- "confidence" (integer 1-5: 5=exact known nutritional data, 4=very close estimate, 3=reasonable estimate, 2=rough guess, 1=very uncertain)

Always provide your best estimate, even for unfamiliar or vague items. Use your knowledge of similar foods to approximate. Only return {"error": "unrecognized"} if the input is not food at all (e.g. random characters, non-food objects).
Return only valid JSON, no explanation.`

// foodSystemPromptFallbackMacros is used when the user tracks no macros yet.
const foodSystemPromptFallbackMacros = "Protein (g), Carbs (g), Fat (g)"

/* ─── OpenAI HTTP client ─────────────────────────────────────────────── */

// openAIMessage is a single message in the OpenAI chat completions request.
type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIRequest is the request body for the OpenAI chat completions API.
type openAIRequest struct {
	Model          string                 `json:"model"`
	Messages       []openAIMessage        `json:"messages"`
	Temperature    float64                `json:"temperature"`
	ResponseFormat map[string]interface{} `json:"response_format"`
}

// callOpenAI sends a chat completions request and returns the raw content string
// from the first choice. Uses raw net/http to avoid pulling in the OpenAI SDK.
func callOpenAI(ctx context.Context, messages []openAIMessage, baseURL string) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	reqBody := openAIRequest{
		Model:       "gpt-4o-mini",
		Messages:    messages,
		Temperature: 0,
		ResponseFormat: map[string]interface{}{
			"type": "json_object",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	// Parse the response to extract choices[0].message.content
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// suggestIntakeEntry handles POST /api/suggest.
// Accepts a food description, calls OpenAI to parse it into an intake entry
// draft keyed to the user's tracked macros, and returns the suggestion. The
// client reviews it and logs it via POST /api/days/:date/intake.
func (h *Handler) suggestIntakeEntry(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Description) == "" {
		apiError(c, http.StatusBadRequest, "description is required")
		return
	}

	tracked := h.loadTrackedMacrosForPrompt(c)

	messages := []openAIMessage{
		{Role: "system", Content: buildFoodPrompt(tracked)},
		{Role: "user", Content: req.Description},
	}

	content, err := callOpenAI(c.Request.Context(), messages, h.openAIBaseURL)
	if err != nil {
		log.Printf("[suggest] OpenAI error: %v", err)
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}

	// Check if the AI returned an "unrecognized" error
	var errorResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(content), &errorResp); err != nil {
		log.Printf("[suggest] Failed to parse OpenAI response: %v", err)
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}
	if errorResp.Error == "unrecognized" {
		c.JSON(http.StatusOK, gin.H{"error": "unrecognized"})
		return
	}

	// Parse the suggestion
	var suggestion suggestionResponse
	if err := json.Unmarshal([]byte(content), &suggestion); err != nil {
		log.Printf("[suggest] Failed to parse suggestion JSON: %v", err)
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}

	// Validate that we got a usable response (at minimum, item_name and calories)
	if suggestion.ItemName == "" || suggestion.Calories == 0 {
		c.JSON(http.StatusOK, gin.H{"error": "unrecognized"})
		return
	}

	attachMacroIDs(&suggestion, tracked)

	c.JSON(http.StatusOK, suggestion)
}

// buildFoodPrompt lists the user's tracked macro names in the system prompt so
// the AI never reports amounts we can't record.
func buildFoodPrompt(tracked []trackedMacro) string {
	if len(tracked) == 0 {
		return fmt.Sprintf(foodSystemPromptTemplate, foodSystemPromptFallbackMacros)
	}
	names := make([]string, len(tracked))
	for i, m := range tracked {
		names[i] = fmt.Sprintf("%s (%s)", m.Name, m.Unit)
	}
	return fmt.Sprintf(foodSystemPromptTemplate, strings.Join(names, ", "))
}

// loadTrackedMacrosForPrompt returns the user's tracked macros, or nil when
// none can be loaded. The suggestion still works either way.
func (h *Handler) loadTrackedMacrosForPrompt(c *gin.Context) []trackedMacro {
	if h.db == nil {
		return nil
	}
	userID := c.GetInt("user_id")
	tracked, err := queryMany[trackedMacro](h.db, c,
		"SELECT * FROM tracked_macros WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return nil
	}
	return tracked
}

// attachMacroIDs matches suggested macro names back to the user's tracked
// macros (case-insensitive) and fills in their IDs for direct logging.
func attachMacroIDs(s *suggestionResponse, tracked []trackedMacro) {
	for i := range s.Macros {
		for _, m := range tracked {
			if strings.EqualFold(s.Macros[i].Name, m.Name) {
				s.Macros[i].MacroID = m.ID
				break
			}
		}
	}
}

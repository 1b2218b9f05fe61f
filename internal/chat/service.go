// Package chat routes free-text questions to the engine's calculators and
// phrases their results through a local Ollama model.
package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"remarket/server/internal/tools"
)

// Degraded replies when the language model cannot answer.
const (
	timeoutFallback = "I'm taking too long to respond. Please try again."
	errorFallback   = "I'm sorry, I encountered an error processing your request. Please try again."
)

var errorFollowups = []string{
	"Find me properties in Amman",
	"What's the average price for apartments?",
}

const (
	maxConversations = 1000
	maxHistory       = 10
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Conversation struct {
	ID         string
	PropertyID int64
	History    []Message
	UpdatedAt  time.Time
}

type Request struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversation_id"`
	PropertyID     *int64 `json:"property_id"`
}

type Response struct {
	ConversationID string      `json:"conversation_id"`
	Response       string      `json:"response"`
	Intent         Intent      `json:"intent"`
	Data           interface{} `json:"data,omitempty"`
	DisplayType    string      `json:"display_type"`
	Suggestions    []string    `json:"suggestions"`
}

type HealthStatus struct {
	Status  string `json:"status"`
	Model   string `json:"model,omitempty"`
	Message string `json:"message,omitempty"`
}

// Service owns the conversation contexts and the tool dispatch.
type Service struct {
	store   tools.Store
	toolbox *tools.Toolbox
	llm     *OllamaClient
	logger  *logrus.Logger

	mu            sync.Mutex
	conversations map[string]*Conversation
}

func NewService(store tools.Store, toolbox *tools.Toolbox, llm *OllamaClient, logger *logrus.Logger) *Service {
	return &Service{
		store:         store,
		toolbox:       toolbox,
		llm:           llm,
		logger:        logger,
		conversations: make(map[string]*Conversation),
	}
}

// Health reports whether the language model can be reached.
func (s *Service) Health() HealthStatus {
	if err := s.llm.Health(); err != nil {
		return HealthStatus{Status: "unavailable", Message: "Ollama service is not responding"}
	}
	return HealthStatus{Status: "healthy", Model: s.llm.model}
}

// HandleMessage classifies the message, runs the matching tool and asks the
// model to phrase the outcome. It always returns a usable response; model
// failures degrade to deterministic text while the structured data stays in
// the envelope.
func (s *Service) HandleMessage(req Request) *Response {
	id, propertyID, history := s.begin(req)

	lower := strings.ToLower(req.Message)
	intent := DetectIntent(lower, propertyID > 0)

	resp := &Response{
		ConversationID: id,
		Intent:         intent,
		DisplayType:    tools.DisplayText,
		Suggestions:    FollowupSuggestions(intent),
	}

	switch intent {
	case IntentPropertySearch:
		s.runSearch(lower, req.Message, resp)
	case IntentPricePrediction:
		s.runPredict(lower, req.Message, resp)
	case IntentROICalculation:
		s.runROI(lower, req.Message, resp)
	case IntentMortgage:
		s.runMortgage(lower, req.Message, resp)
	case IntentFindSimilar:
		s.runFindSimilar(lower, req.Message, resp)
	case IntentCompare:
		s.runCompare(lower, req.Message, resp)
	case IntentPropertyDetails:
		s.runPropertyDetails(propertyID, lower, req.Message, history, resp)
	default:
		s.runDefault(req.Message, history, resp)
	}

	s.remember(id, req.Message, resp.Response)
	return resp
}

// begin resolves the conversation under the lock and hands back immutable
// snapshots so the tool and model calls run without holding it.
func (s *Service) begin(req Request) (string, int64, []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[req.ConversationID]
	if !ok {
		conv = &Conversation{ID: uuid.NewString(), UpdatedAt: time.Now()}
		s.evictOldest()
		s.conversations[conv.ID] = conv
	}
	if req.PropertyID != nil && *req.PropertyID > 0 {
		conv.PropertyID = *req.PropertyID
	}

	history := make([]Message, len(conv.History))
	copy(history, conv.History)
	return conv.ID, conv.PropertyID, history
}

// evictOldest keeps the conversation map bounded. Caller holds the lock.
func (s *Service) evictOldest() {
	if len(s.conversations) < maxConversations {
		return
	}
	oldestID := ""
	var oldest time.Time
	for id, conv := range s.conversations {
		if oldestID == "" || conv.UpdatedAt.Before(oldest) {
			oldestID = id
			oldest = conv.UpdatedAt
		}
	}
	if oldestID != "" {
		delete(s.conversations, oldestID)
	}
}

func (s *Service) remember(id, userMessage, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return
	}
	conv.History = append(conv.History,
		Message{Role: "user", Content: userMessage},
		Message{Role: "assistant", Content: reply},
	)
	if len(conv.History) > maxHistory {
		conv.History = conv.History[len(conv.History)-maxHistory:]
	}
	conv.UpdatedAt = time.Now()
}

func (s *Service) runSearch(lower, original string, resp *Response) {
	result, err := s.toolbox.Search(extractSearchFilter(lower))
	if err != nil {
		s.failed(resp, err)
		return
	}
	resp.Data = result
	resp.DisplayType = result.DisplayType
	resp.Response = s.phraseTool(original, result.Message, result)
}

func (s *Service) runPredict(lower, original string, resp *Response) {
	result, err := s.toolbox.Predict(extractAttributes(lower))
	if err != nil {
		s.failed(resp, err)
		return
	}
	resp.Data = result
	resp.DisplayType = result.DisplayType
	resp.Response = s.phraseTool(original, result.Message, result)
}

func (s *Service) runROI(lower, original string, resp *Response) {
	result := tools.CalculateROI(extractROIParams(lower, nil))
	resp.Data = result
	resp.DisplayType = result.DisplayType
	resp.Response = s.phraseTool(original, result.Message, result)
}

func (s *Service) runMortgage(lower, original string, resp *Response) {
	result := tools.CalculateMortgage(extractMortgageParams(lower, nil))
	resp.Data = result
	resp.DisplayType = result.DisplayType
	resp.Response = s.phraseTool(original, result.Message, result)
}

func (s *Service) runFindSimilar(lower, original string, resp *Response) {
	ids := extractIDs(lower)
	if len(ids) == 0 {
		resp.Response = "Which property should I look at? Give me its listing id and I'll find similar ones."
		return
	}
	result, err := s.toolbox.FindSimilar(ids[0], 3)
	if err != nil {
		s.failed(resp, err)
		return
	}
	resp.Data = result
	resp.DisplayType = result.DisplayType
	resp.Response = s.phraseTool(original, result.Message, result)
}

func (s *Service) runCompare(lower, original string, resp *Response) {
	result, err := s.toolbox.Compare(extractIDs(lower))
	if err != nil {
		s.failed(resp, err)
		return
	}
	resp.Data = result
	resp.DisplayType = result.DisplayType
	resp.Response = s.phraseTool(original, result.Message, result)
}

// runPropertyDetails pins the conversation to one listing. Mortgage and
// similarity questions still run their tools, seeded with the listing's own
// price.
func (s *Service) runPropertyDetails(propertyID int64, lower, original string, history []Message, resp *Response) {
	property, err := s.store.GetProperty(propertyID)
	if err != nil {
		s.failed(resp, err)
		return
	}
	if property == nil {
		resp.Response = fmt.Sprintf("Property %d not found.", propertyID)
		return
	}

	var toolMessage string
	switch {
	case strings.Contains(lower, "mortgage") && property.Price != nil:
		result := tools.CalculateMortgage(extractMortgageParams(lower, property.Price))
		resp.Data = result
		resp.DisplayType = result.DisplayType
		toolMessage = result.Message
	case strings.Contains(lower, "similar"):
		result, err := s.toolbox.FindSimilar(propertyID, 3)
		if err != nil {
			s.failed(resp, err)
			return
		}
		resp.Data = result
		resp.DisplayType = result.DisplayType
		toolMessage = result.Message
	}

	system := propertySystemPrompt(property)
	prompt := buildPrompt(history, original)
	if toolMessage != "" {
		toolJSON, _ := json.MarshalIndent(resp.Data, "", "  ")
		prompt = buildToolPrompt(original, string(toolJSON))
	}

	text, err := s.llm.Generate(prompt, system)
	if err != nil || strings.TrimSpace(text) == "" {
		s.logger.WithError(err).Warn("Language model unavailable for property chat")
		if toolMessage != "" {
			resp.Response = toolMessage
		} else if isTimeout(err) {
			resp.Response = timeoutFallback
		} else {
			resp.Response = errorFallback
			resp.Suggestions = errorFollowups
		}
		return
	}
	resp.Response = strings.TrimSpace(text)
}

func (s *Service) runDefault(original string, history []Message, resp *Response) {
	text, err := s.llm.Generate(buildPrompt(history, original), globalSystemPrompt)
	if err != nil || strings.TrimSpace(text) == "" {
		s.logger.WithError(err).Warn("Language model unavailable for chat")
		if isTimeout(err) {
			resp.Response = timeoutFallback
		} else {
			resp.Response = errorFallback
			resp.Suggestions = errorFollowups
		}
		return
	}
	resp.Response = strings.TrimSpace(text)
}

// phraseTool asks the model to narrate a tool result; the tool's own message
// is the degraded reply when the model cannot.
func (s *Service) phraseTool(original, toolMessage string, data interface{}) string {
	toolJSON, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return toolMessage
	}
	text, err := s.llm.Generate(buildToolPrompt(original, string(toolJSON)), globalSystemPrompt)
	if err != nil || strings.TrimSpace(text) == "" {
		s.logger.WithError(err).Warn("Falling back to tool message for chat reply")
		return toolMessage
	}
	return strings.TrimSpace(text)
}

func (s *Service) failed(resp *Response, err error) {
	s.logger.WithError(err).Error("Chat tool execution failed")
	resp.Response = errorFallback
	resp.DisplayType = tools.DisplayText
	resp.Suggestions = errorFollowups
}

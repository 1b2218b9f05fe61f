package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"remarket/server/config"
	"remarket/server/internal/models"
)

const telegramAPI = "https://api.telegram.org"

type TelegramNotifier struct {
	logger  *logrus.Logger
	client  *http.Client
	cfg     config.TelegramConfig
	baseURL string
}

func NewTelegramNotifier(cfg config.TelegramConfig, logger *logrus.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		cfg:     cfg,
		baseURL: telegramAPI,
	}
}

func (t *TelegramNotifier) Name() string {
	return "telegram"
}

// SendDigest formats the digest as an HTML message and posts it to the
// configured chat.
func (t *TelegramNotifier) SendDigest(digest *models.Digest) error {
	if t.cfg.BotToken == "" {
		return errors.New("Telegram bot token is not configured")
	}
	if t.cfg.ChatID == "" {
		return errors.New("Telegram chat ID is not configured")
	}
	return t.sendMessage(formatTelegramDigest(digest))
}

func formatTelegramDigest(digest *models.Digest) string {
	if len(digest.Opportunities) == 0 {
		return fmt.Sprintf(
			"<b>🏠 Market Digest</b>\n\nNo listings are currently more than %.0f%% below their predicted value.",
			digest.MinDiscount)
	}

	msg := fmt.Sprintf("<b>🏠 Undervalued Listings, %s</b>\n", digest.GeneratedAt.Format("2 Jan 2006"))
	for _, p := range digest.Opportunities {
		price := 0.0
		if p.Price != nil {
			price = *p.Price
		}
		var predicted int64
		if p.PredictedPrice != nil {
			predicted = *p.PredictedPrice
		}
		pct := 0.0
		if p.ValuationPercentage != nil {
			pct = math.Abs(*p.ValuationPercentage)
		}
		msg += fmt.Sprintf(
			"\n📍 <b>%s, %s</b> (%s, %s)\n💰 %.0f JOD listed\n🤖 %d JOD predicted\n📉 %.1f%% below market\n",
			p.Neighborhood, p.City, p.PropertyType, p.Listing, price, predicted, pct)
	}
	msg += fmt.Sprintf("\nScanned %d listings, threshold %.0f%%.", digest.TotalListings, digest.MinDiscount)
	return msg
}

// sendMessage posts to the Telegram bot API
func (t *TelegramNotifier) sendMessage(message string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.cfg.BotToken)
	payload := map[string]interface{}{
		"chat_id":    t.cfg.ChatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %v", err)
	}

	resp, err := t.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		case http.StatusNotFound:
			return errors.New("bot not found - please check your token from @BotFather")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	t.logger.Info("Telegram digest delivered")
	return nil
}

// Package telegram posts review reports to a Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/skill-optimizer/internal/domain"
	"github.com/kitbuilder587/skill-optimizer/internal/ratelimit"
	"github.com/kitbuilder587/skill-optimizer/internal/report"
)

// лимит Telegram на длину одного сообщения
const maxMessageLen = 4096

type Config struct {
	Token  string
	ChatID int64
	// APIEndpoint переопределяет tgbotapi.APIEndpoint (для тестов)
	APIEndpoint string
	// 0 - ratelimit.DefaultPerMinute
	MessagesPerMinute int
}

type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID  int64
	limiter *ratelimit.Limiter
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Notifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.Token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	logger.Debug("telegram notifier authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("chat_id", cfg.ChatID),
	)

	return &Notifier{
		api:     api,
		chatID:  cfg.ChatID,
		limiter: ratelimit.New(ratelimit.Config{MessagesPerMinute: cfg.MessagesPerMinute}),
		logger:  logger,
	}, nil
}

func (n *Notifier) Notify(ctx context.Context, skill domain.Skill, sc domain.Scorecard, v domain.Verdict) error {
	parts := SplitMessage(FormatMessage(skill, sc, v), maxMessageLen)
	for i, part := range parts {
		if err := n.limiter.Wait(ctx, n.chatID); err != nil {
			return err
		}
		if _, err := n.api.Send(tgbotapi.NewMessage(n.chatID, part)); err != nil {
			return fmt.Errorf("send telegram message %d/%d: %w", i+1, len(parts), err)
		}
	}
	n.logger.Debug("review posted to telegram", zap.Int("messages", len(parts)))
	return nil
}

func FormatMessage(skill domain.Skill, sc domain.Scorecard, v domain.Verdict) string {
	status := "FAIL"
	if v.OverallPass {
		status = "PASS"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Skill review: %s [%s]\n\n", skill.Name, status)
	sb.WriteString(report.Format(sc, v))
	return sb.String()
}

// SplitMessage режет текст на куски не длиннее maxLen, по возможности по
// переводу строки или пробелу.
func SplitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var messages []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			messages = append(messages, text)
			break
		}

		splitPoint := findSplitPoint(text, maxLen)
		messages = append(messages, text[:splitPoint])
		text = text[splitPoint:]
	}

	return messages
}

func findSplitPoint(text string, maxLen int) int {
	if i := strings.LastIndexByte(text[:maxLen], '\n'); i > maxLen/2 {
		return i + 1
	}
	if i := strings.LastIndexByte(text[:maxLen], ' '); i > 0 {
		return i + 1
	}
	// не режем посреди UTF-8 руны
	cut := maxLen
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	if cut == 0 {
		return maxLen
	}
	return cut
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

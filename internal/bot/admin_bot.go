package bot

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"merac_backend/internal/domain"
	"merac_backend/internal/logger"
)

// AdminBot шлет админам уведомления о платежных событиях.
// Команд почти нет, бот односторонний.
type AdminBot struct {
	bot      *tgbotapi.BotAPI
	adminIDs []int64
	stopCh   chan struct{}
	wg       sync.WaitGroup
	log      *slog.Logger
}

func NewAdminBot(token string, adminIDs []int64) (*AdminBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "admin_bot")
	log.Info("admin bot authorized", "username", api.Self.UserName)

	return &AdminBot{
		bot:      api,
		adminIDs: adminIDs,
		stopCh:   make(chan struct{}),
		log:      log,
	}, nil
}

// Start запускает прослушивание команд
func (b *AdminBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if !b.isAdmin(update.Message.From.ID) {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleCommand(msg)
			}(update.Message)
		}
	}
}

// Stop плавно останавливает бота
func (b *AdminBot) Stop() {
	close(b.stopCh)
	b.bot.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("admin bot stopped")
	case <-time.After(10 * time.Second):
		b.log.Warn("admin bot shutdown timeout")
	}
}

func (b *AdminBot) isAdmin(userID int64) bool {
	for _, id := range b.adminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *AdminBot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.reply(msg.Chat.ID, "Бот уведомлений о платежах.\nСюда приходят депозиты и выводы, команды не нужны.")
	default:
		b.reply(msg.Chat.ID, "Неизвестная команда")
	}
}

// NotifyEvent рассылает платежное событие всем админам
func (b *AdminBot) NotifyEvent(ev domain.PaymentEvent) {
	var text string
	switch ev.Type {
	case domain.EventDepositConfirmed:
		text = fmt.Sprintf("💰 Депозит: %.2f USDT\nПользователь: %s\nTx: %s", ev.Amount, ev.UserID, ev.TxID)
	case domain.EventWithdrawalRequested:
		text = fmt.Sprintf("📤 Запрошен вывод: %.2f USDT\nПользователь: %s\nАдрес: %s", ev.Amount, ev.UserID, ev.Address)
	case domain.EventWithdrawalCompleted:
		text = fmt.Sprintf("✅ Вывод выполнен: %.2f USDT\nПользователь: %s\nTx: %s", ev.Amount, ev.UserID, ev.TxID)
	case domain.EventWithdrawalFailed:
		text = fmt.Sprintf("❌ Вывод не прошел: %.2f USDT\nПользователь: %s\nОшибка: %s", ev.Amount, ev.UserID, ev.Error)
	default:
		return
	}

	for _, id := range b.adminIDs {
		if _, err := b.bot.Send(tgbotapi.NewMessage(id, text)); err != nil {
			b.log.Warn("notify failed", "admin_id", id, "error", err)
		}
	}
}

func (b *AdminBot) reply(chatID int64, text string) {
	if _, err := b.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("reply failed", "chat_id", chatID, "error", err)
	}
}

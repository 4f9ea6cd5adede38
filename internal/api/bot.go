package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	app "window-measure/internal/application"
	"window-measure/internal/container"
	"window-measure/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот для измерения окон по фотографии.

📸 Сфотографируйте окно вместе с маркером ArUco или AprilTag известного размера, и я посчитаю ширину и высоту в дюймах.

📋 Команды:
/measure: начать измерение
/marker: настройки маркера
/help: справка
/cancel: отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Закрепите маркер в плоскости окна
2️⃣ Снимите окно целиком, держа камеру параллельно стеклу
3️⃣ Отправьте фото, лучше файлом без сжатия
4️⃣ Вы получите размеры и фото с найденным контуром

⚙️ Настройка маркера:
/marker <размер_мм> [кол-во 1|2] [aruco|apriltag] [id]
Например: /marker 150 2 apriltag

📋 Команды:
/measure: начать измерение
/cancel: отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото окна с маркером."
	msgCancelled       = "❌ Операция отменена. Отправьте /measure для нового измерения."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото окна с маркером."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgBusy            = "⏳ Предыдущее фото ещё обрабатывается, подождите."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
	msgMarkerUsage     = "⚙️ Использование: /marker <размер_мм> [кол-во 1|2] [aruco|apriltag] [id]"
)

// Bot представляет Telegram-бота
type Bot struct {
	api          *tgbotapi.BotAPI
	users        *app.UserService
	measurements *app.MeasurementService
	log          logrus.FieldLogger
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container, log logrus.FieldLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.WithField("account", api.Self.UserName).Info("authorized")

	return &Bot{
		api:          api,
		users:        c.UserService,
		measurements: c.MeasurementService,
		log:          log,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	log := b.log.WithFields(logrus.Fields{"user_id": msg.From.ID, "chat_id": msg.Chat.ID})

	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		log.WithError(err).Error("get user")
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, log)
		return
	}

	fileID, ok := imageFileID(msg)
	if !ok {
		b.sendMessage(msg.Chat.ID, msgSendPhoto)
		return
	}
	if user.State == entity.StateProcessing {
		b.sendMessage(msg.Chat.ID, msgBusy)
		return
	}
	b.handlePhoto(ctx, msg, fileID, log)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, log logrus.FieldLogger) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	var err error
	switch msg.Command() {
	case "start":
		_, err = b.users.SetState(ctx, userID, chatID, entity.StateMainMenu)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "measure":
		_, err = b.users.BeginMeasure(ctx, userID, chatID)
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "cancel":
		_, err = b.users.Cancel(ctx, userID, chatID)
		b.sendMessage(chatID, msgCancelled)

	case "marker":
		b.handleMarker(ctx, msg, log)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}

	if err != nil {
		log.WithError(err).WithField("command", msg.Command()).Error("update user state")
	}
}

// handleMarker показывает или меняет настройки маркера пользователя
func (b *Bot) handleMarker(ctx context.Context, msg *tgbotapi.Message, log logrus.FieldLogger) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	user, err := b.users.Get(ctx, userID, chatID)
	if err != nil {
		log.WithError(err).Error("get user")
		return
	}
	current := user.MarkerOr(b.measurements.Defaults())

	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		b.sendMessage(chatID, formatMarker(current)+"\n\n"+msgMarkerUsage)
		return
	}

	marker, err := parseMarkerArgs(args, current)
	if err != nil {
		b.sendMessage(chatID, fmt.Sprintf("⚠️ %v\n\n%s", err, msgMarkerUsage))
		return
	}

	user, err = b.users.SetMarker(ctx, userID, chatID, marker)
	if err != nil {
		log.WithError(err).Warn("set marker")
		b.sendMessage(chatID, fmt.Sprintf("⚠️ %v\n\n%s", err, msgMarkerUsage))
		return
	}
	b.sendMessage(chatID, "✅ Настройки сохранены.\n"+formatMarker(user.MarkerOr(marker)))
}

// handlePhoto скачивает фото, измеряет окно и отвечает результатом
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, fileID string, log logrus.FieldLogger) {
	chatID := msg.Chat.ID
	b.sendMessage(chatID, msgProcessing)

	imageData, err := b.downloadFile(fileID)
	if err != nil {
		log.WithError(err).Error("download photo")
		b.sendMessage(chatID, msgProcessingError)
		if _, err := b.users.Cancel(ctx, msg.From.ID, chatID); err != nil {
			log.WithError(err).Error("reset user state")
		}
		return
	}

	out, err := b.measurements.AcceptPhoto(ctx, msg.From.ID, chatID, imageData)
	if err != nil {
		log.WithError(err).Info("measurement failed")
		b.sendMessage(chatID, formatError(err))
		return
	}

	if len(out.Annotated) == 0 {
		b.sendMessage(chatID, formatResult(out.Dimensions))
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "window.jpg", Bytes: out.Annotated})
	photo.Caption = formatResult(out.Dimensions)
	if _, err := b.api.Send(photo); err != nil {
		log.WithError(err).Error("send photo")
		b.sendMessage(chatID, photo.Caption)
	}
}

// imageFileID возвращает фото наибольшего размера или документ-картинку
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).WithField("chat_id", chatID).Error("send message")
	}
}

// formatError переводит ошибку измерения в сообщение пользователю
func formatError(err error) string {
	var markerErr *entity.MarkerDetectionError
	var lineErr *entity.LineError
	var quadErr *entity.QuadFitError

	switch {
	case errors.As(err, &markerErr):
		if errors.Is(markerErr.Kind, entity.ErrMarkerCountMismatch) {
			return fmt.Sprintf("⚠️ Ожидалось маркеров: %d, найдено: %d%s.\nПроверьте настройки /marker.",
				markerErr.ExpectedCount, markerErr.DetectedCount, formatIDs(markerErr.DetectedIDs))
		}
		if markerErr.ExpectedID >= 0 {
			return fmt.Sprintf("⚠️ Маркер с ID %d не найден. Найдено маркеров: %d%s.\nПроверьте настройки /marker.",
				markerErr.ExpectedID, markerErr.DetectedCount, formatIDs(markerErr.DetectedIDs))
		}
		return "⚠️ Маркеры не найдены. Убедитесь, что маркер целиком попал в кадр."
	case errors.As(err, &lineErr):
		return fmt.Sprintf("⚠️ Не удалось найти границы окна: найдено линий %d из %d.\nСнимите окно целиком на контрастном фоне.",
			lineErr.Found, lineErr.Required)
	case errors.As(err, &quadErr):
		return "⚠️ Не удалось построить контур окна. Попробуйте снять окно прямо, без сильного наклона."
	case errors.Is(err, entity.ErrDegenerateScale):
		return "⚠️ Маркер распознан некорректно, масштаб не определён. Сделайте фото ближе."
	case errors.Is(err, entity.ErrBackendUnavailable):
		return "⚠️ Распознавание маркеров недоступно в этой сборке бота."
	default:
		return msgProcessingError
	}
}

func formatIDs(ids []int) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return " (ID: " + strings.Join(parts, ", ") + ")"
}

// formatResult текст с размерами окна
func formatResult(d entity.Dimensions) string {
	text := fmt.Sprintf("📐 Ширина: %.2f\"\n📏 Высота: %.2f\"", d.WidthIn, d.HeightIn)
	if d.Confidence == entity.ConfidencePartial {
		text += "\n\n⚠️ Часть границ окна не найдена, результат может быть неточным."
	}
	return text
}

func formatMarker(m entity.MarkerConfig) string {
	return fmt.Sprintf("⚙️ Маркер: %d мм, количество %d, словарь %s, ID %d", m.SizeMM, m.Count, m.Family, m.ID)
}

package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	app "leaf-counter/internal/application"
	"leaf-counter/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я считаю листья на фотографиях растений.

📸 Отправьте фото, и я подсвечу найденные листья и посчитаю их площадь в пикселях.

📋 Команды:
/help — справка
/conf 0.25 — порог уверенности модели
/format png|jpeg — формат результата
/settings — текущие настройки`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото растения (или картинку файлом, чтобы не терять качество)
2️⃣ Бот найдёт листья и наложит на них зелёные маски
3️⃣ Вы получите картинку с подписями: число листьев, площадь и размер изображения

💡 Площадь считается по каждой маске отдельно: пересекающиеся листья учитываются дважды.

📋 Команды:
/conf 0.25 — порог уверенности модели (0..1)
/format png|jpeg — формат результата
/settings — текущие настройки`

	msgSendPhoto       = "📸 Пожалуйста, отправьте фото растения."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgBadImage        = "⚠️ Не удалось прочитать изображение. Попробуйте другой файл."
	msgBusy            = "⌛ Сейчас много запросов, попробуйте через минуту."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
	msgBadConfidence   = "⚠️ Укажите порог от 0 до 1, например: /conf 0.3"
	msgBadFormat       = "⚠️ Поддерживаются форматы png и jpeg, например: /format png"
	msgTooLarge        = "⚠️ Файл слишком большой."
	msgSettingsError   = "⚠️ Не удалось сохранить настройки."
)

// Bot представляет Telegram-бота
type Bot struct {
	api           *tgbotapi.BotAPI
	settings      *app.SettingsService
	analysis      *app.AnalysisService
	maxUploadSize int64
	logger        *zap.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, settings *app.SettingsService, analysis *app.AnalysisService, maxUploadSize int64, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "create telegram client")
	}

	logger.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	return &Bot{
		api:           api,
		settings:      settings,
		analysis:      analysis,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
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
	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		b.handleImage(ctx, msg.Chat.ID, photo.FileID, int64(photo.FileSize))
		return
	}

	// Картинка, отправленная файлом
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		b.handleImage(ctx, msg.Chat.ID, msg.Document.FileID, int64(msg.Document.FileSize))
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "conf":
		confidence, err := parseConfidence(msg.CommandArguments())
		if err != nil {
			b.sendMessage(chatID, msgBadConfidence)
			return
		}
		s, err := b.settings.SetConfidence(ctx, chatID, confidence)
		if err != nil {
			b.logger.Error("save confidence", zap.Int64("chat_id", chatID), zap.Error(err))
			b.sendMessage(chatID, msgSettingsError)
			return
		}
		b.sendMessage(chatID, formatSettings(s))

	case "format":
		format, err := entity.ParseOutputFormat(msg.CommandArguments())
		if err != nil {
			b.sendMessage(chatID, msgBadFormat)
			return
		}
		s, err := b.settings.SetFormat(ctx, chatID, format)
		if err != nil {
			b.logger.Error("save format", zap.Int64("chat_id", chatID), zap.Error(err))
			b.sendMessage(chatID, msgSettingsError)
			return
		}
		b.sendMessage(chatID, formatSettings(s))

	case "settings":
		s, err := b.settings.Get(ctx, chatID)
		if err != nil {
			b.logger.Error("load settings", zap.Int64("chat_id", chatID), zap.Error(err))
			b.sendMessage(chatID, msgSettingsError)
			return
		}
		b.sendMessage(chatID, formatSettings(s))

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handleImage скачивает изображение, анализирует и отправляет результат
func (b *Bot) handleImage(ctx context.Context, chatID int64, fileID string, size int64) {
	if b.maxUploadSize > 0 && size > b.maxUploadSize {
		b.sendMessage(chatID, msgTooLarge)
		return
	}

	settings, err := b.settings.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("load settings", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	b.sendMessage(chatID, msgProcessing)

	imageData, err := b.downloadFile(ctx, fileID)
	if errors.Is(err, errTooLarge) {
		b.sendMessage(chatID, msgTooLarge)
		return
	}
	if err != nil {
		b.logger.Error("download photo", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	out, err := b.analysis.AnalyzeBytes(ctx, imageData, settings.Confidence, settings.Format)
	if err != nil {
		b.logger.Warn("analyze photo", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendMessage(chatID, errorMessage(err))
		return
	}

	b.sendResult(chatID, out)
}

// sendResult отправляет картинку: JPEG как фото, PNG файлом, чтобы Telegram не пережимал его
func (b *Bot) sendResult(chatID int64, out *app.AnalysisOutput) {
	file := tgbotapi.FileBytes{Name: "leaves." + string(out.Format), Bytes: out.Encoded}
	caption := formatCaption(out.Result)

	var c tgbotapi.Chattable
	if out.Format == entity.FormatPNG {
		doc := tgbotapi.NewDocument(chatID, file)
		doc.Caption = caption
		c = doc
	} else {
		photo := tgbotapi.NewPhoto(chatID, file)
		photo.Caption = caption
		c = photo
	}

	if _, err := b.api.Send(c); err != nil {
		b.logger.Error("send result", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendMessage(chatID, caption)
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %s", resp.Status)
	}

	return readLimited(resp.Body, b.maxUploadSize)
}

// errTooLarge файл больше допустимого размера
var errTooLarge = errors.New("file too large")

// readLimited читает не больше limit байт; limit <= 0 снимает ограничение.
// FileSize в ответе Telegram бывает нулевым, поэтому размер проверяется при чтении.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, errors.Wrapf(errTooLarge, "more than %d bytes", limit)
	}
	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// parseConfidence разбирает аргумент команды /conf
func parseConfidence(args string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(args, ",", ".")), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 1 {
		return 0, errors.Wrapf(entity.ErrInvalidInput, "confidence %v", v)
	}
	return v, nil
}

// formatCaption подпись к результату
func formatCaption(r *entity.AggregateResult) string {
	if r.Count == 0 {
		return fmt.Sprintf("🍃 Листья не найдены.\n📐 Размер: %s", r.Size())
	}
	return fmt.Sprintf("🍃 Листьев: %d\n🟩 Пикселей листьев: %d\n📐 Размер: %s",
		r.Count, r.TotalPixels, r.Size())
}

// formatSettings текущие настройки чата
func formatSettings(s *entity.ChatSettings) string {
	return fmt.Sprintf("⚙️ Порог уверенности: %.2f\n🖼 Формат: %s", s.Confidence, s.Format)
}

// errorMessage текст ошибки для пользователя
func errorMessage(err error) string {
	switch {
	case errors.Is(err, entity.ErrResourceUnavailable), errors.Is(err, entity.ErrInvalidInput):
		return msgBadImage
	case errors.Is(err, app.ErrQueueFull):
		return msgBusy
	default:
		return msgProcessingError
	}
}

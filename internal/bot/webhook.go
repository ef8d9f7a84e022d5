package bot

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v72"

	"calorigram/internal/models"
)

// HandleStripeWebhook activates premium after a completed checkout.
// The Telegram ID travels in the session's client reference ID.
func (b *Bot) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		b.logger.Errorw("Failed to read webhook body", "error", err)
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	webhookSecret := b.stripeClient.GetWebhookSecret()
	if webhookSecret == "" {
		b.logger.Error("Webhook secret is not configured")
		http.Error(w, "Webhook not configured", http.StatusInternalServerError)
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		b.logger.Error("Missing Stripe signature header")
		http.Error(w, "Missing signature", http.StatusBadRequest)
		return
	}

	event, err := b.stripeClient.VerifyWebhookSignature(body, signature, webhookSecret)
	if err != nil {
		b.logger.Errorw("Failed to verify webhook signature", "error", err)
		http.Error(w, "Invalid signature", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			b.logger.Errorw("Failed to parse checkout session", "error", err)
			http.Error(w, "Failed to parse event data", http.StatusBadRequest)
			return
		}

		if sess.ClientReferenceID == "" {
			b.logger.Errorw("Missing client reference ID", "session_id", sess.ID)
			http.Error(w, "Missing client reference ID", http.StatusBadRequest)
			return
		}

		userID, err := strconv.ParseInt(sess.ClientReferenceID, 10, 64)
		if err != nil {
			b.logger.Errorw("Invalid client reference ID", "value", sess.ClientReferenceID, "error", err)
			http.Error(w, "Invalid client reference ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		expiry := time.Now().AddDate(0, 0, b.premiumDays)
		if err := b.db.SetSubscription(ctx, userID, models.TierPremium, &expiry, true); err != nil {
			b.logger.Errorw("Failed to activate premium", "user_id", userID, "error", err)
			http.Error(w, "Failed to activate subscription", http.StatusInternalServerError)
			return
		}

		b.logger.Infow("Premium activated via Stripe", "user_id", userID)
		b.replyMarkdown(userID, "✅ *Оплата получена!*\n\n"+
			"⭐ Премиум подписка активирована.\n"+
			"Спасибо, что пользуетесь Calorigram!", nil)

	default:
		b.logger.Debugw("Unhandled Stripe event", "type", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}

// handleBuyPremium opens a Stripe checkout session and sends the user
// the payment link.
func (b *Bot) handleBuyPremium(chatID, userID int64) {
	if b.stripeClient == nil || b.stripeClient.GetPriceID() == "" {
		b.reply(chatID, "💳 Оплата временно недоступна. Обратитесь к администратору.")
		return
	}

	_, url, err := b.stripeClient.CreateCheckoutSession(userID, b.callbackURL, b.callbackURL)
	if err != nil {
		b.logger.Errorw("Failed to create checkout session", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Не удалось создать платежную сессию. Попробуйте позже.")
		return
	}

	b.replyMarkdown(chatID, "💳 *Оформление премиум подписки*\n\n"+
		"Перейдите по ссылке для оплаты:\n"+url+"\n\n"+
		"⭐ После оплаты подписка активируется автоматически.", nil)
}

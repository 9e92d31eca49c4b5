package telegram

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"

	"centerhub/internal/center"
	"centerhub/internal/dashboard"
	"centerhub/internal/filter"
)

// maxResults caps the centers listed in one chat reply.
const maxResults = 10

// callbackCenter prefixes the callback data of the details button.
const callbackCenter = "center:"

// Dashboard is the part of the dashboard controller the bot drives.
type Dashboard interface {
	Sync(ctx context.Context) (dashboard.Snapshot, error)
	Query(sel filter.Selection) []center.Record
	OptionsFor(sel filter.Selection, d filter.Dimension) []string
	Tabs() []filter.Tab
	Find(key string) (center.Record, bool)
	UpdateSource(input string) (string, error)
}

// Renderer turns records into a PNG table.
type Renderer interface {
	RenderTable(records []center.Record, title string) ([]byte, error)
}

// Bot answers chat commands from the configured chat.
type Bot struct {
	client *Client
	dash   Dashboard
	render Renderer
	logger *zap.Logger
}

// NewBot wires a bot. A nil client yields a bot whose HandleUpdates returns at once.
func NewBot(client *Client, dash Dashboard, render Renderer, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{client: client, dash: dash, render: render, logger: logger}
}

const helpText = `<b>নির্বাচন কেন্দ্র বট</b>

/search &lt;text&gt; [risk=.. upazila=.. union=.. type=.. police=.. bgb=.. army=.. rab=.. voters=lt1500|1500-2500|gt2500]
/center &lt;serial&gt;
/options &lt;upazila|union|risk|type|police|bgb|army|rab|voters&gt;
/tabs
/summary [upazila]
/refresh
/source &lt;sheet link or id&gt;`

// HandleUpdates long-polls for updates and processes them until ctx is done.
//
// Update processing loop:
//  1. Long poll for updates (30s timeout)
//  2. Process each update
//  3. Advance the offset to acknowledge processed updates
func (b *Bot) HandleUpdates(ctx context.Context) {
	if b.client == nil {
		b.logger.Info("⚠️  Telegram not configured, command handler disabled")
		return
	}

	b.logger.Info("✓ Starting Telegram command handler...")
	offset := 0
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("🛑 Telegram command handler stopped")
			return
		default:
		}

		updates, err := b.client.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			b.logger.Warn("⚠️  Error getting Telegram updates", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			b.handleUpdate(ctx, update)
			offset = update.UpdateID + 1
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// authorized reports whether msg comes from the configured chat.
func (b *Bot) authorized(msg *IncomingMessage) bool {
	return msg != nil && msg.Chat != nil && chatIDString(msg.Chat.ID) == b.client.ChatID
}

func (b *Bot) handleMessage(ctx context.Context, msg *IncomingMessage) {
	if !b.authorized(msg) {
		b.logger.Debug("  ⏭️  Ignoring message from foreign chat")
		return
	}
	cmd, args := parseCommand(msg.Text)
	if cmd == "" {
		return
	}
	b.logger.Info("💬 Received command", zap.String("command", cmd), zap.String("args", args))

	chat := chatIDString(msg.Chat.ID)
	var err error
	switch cmd {
	case "start", "help":
		_, err = b.client.SendMessage(ctx, chat, helpText, nil)
	case "search":
		err = b.cmdSearch(ctx, chat, args)
	case "center":
		err = b.sendDetails(ctx, chat, args)
	case "options":
		err = b.cmdOptions(ctx, chat, args)
	case "tabs":
		err = b.cmdTabs(ctx, chat)
	case "summary":
		err = b.cmdSummary(ctx, chat, args)
	case "refresh":
		err = b.cmdRefresh(ctx, chat)
	case "source":
		err = b.cmdSource(ctx, chat, args)
	default:
		_, err = b.client.SendMessage(ctx, chat, "অজানা কমান্ড। /help দেখুন।", nil)
	}
	if err != nil {
		b.logger.Warn("⚠️  Command failed", zap.String("command", cmd), zap.Error(err))
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *CallbackQuery) {
	if !b.authorized(query.Message) {
		return
	}
	b.logger.Info("📞 Received callback query", zap.String("data", query.Data), zap.String("from", query.From.FirstName))

	if err := b.client.answerCallbackQuery(ctx, query.ID, ""); err != nil {
		b.logger.Warn("⚠️  Failed to answer callback query", zap.Error(err))
	}

	key, ok := strings.CutPrefix(query.Data, callbackCenter)
	if !ok {
		b.logger.Warn("⚠️  Invalid callback data format", zap.String("data", query.Data))
		return
	}
	if err := b.sendDetails(ctx, chatIDString(query.Message.Chat.ID), key); err != nil {
		b.logger.Warn("⚠️  Failed to send center details", zap.Error(err))
	}
}

func (b *Bot) cmdSearch(ctx context.Context, chat, args string) error {
	sel, err := parseQuery(args)
	if err != nil {
		_, sendErr := b.client.SendMessage(ctx, chat, "⚠️ "+escape(err.Error()), nil)
		return sendErr
	}
	if !sel.Active() {
		_, err := b.client.SendMessage(ctx, chat, "ব্যবহার: /search &lt;text&gt; [risk=..]", nil)
		return err
	}

	records := b.dash.Query(sel)
	text, markup := formatResults(records)
	_, err = b.client.SendMessage(ctx, chat, text, markup)
	return err
}

func (b *Bot) cmdOptions(ctx context.Context, chat, args string) error {
	d, err := filter.ParseDimension(args)
	if err != nil {
		_, sendErr := b.client.SendMessage(ctx, chat, "⚠️ "+escape(err.Error()), nil)
		return sendErr
	}
	opts := b.dash.OptionsFor(filter.NewSelection(), d)

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b>\n", escape(d.Alias()))
	for _, o := range opts[1:] {
		fmt.Fprintf(&sb, "• %s\n", escape(o))
	}
	if len(opts) == 1 {
		sb.WriteString("-\n")
	}
	_, err = b.client.SendMessage(ctx, chat, sb.String(), nil)
	return err
}

func (b *Bot) cmdTabs(ctx context.Context, chat string) error {
	var sb strings.Builder
	for _, tab := range b.dash.Tabs() {
		fmt.Fprintf(&sb, "%s: <b>%d</b>\n", escape(tab.Name), tab.Count)
	}
	_, err := b.client.SendMessage(ctx, chat, sb.String(), nil)
	return err
}

func (b *Bot) cmdSummary(ctx context.Context, chat, args string) error {
	sel := filter.NewSelection()
	title := "সব উপজেলা"
	if args != "" {
		sel = sel.With(filter.Upazila, args)
		title = args
	}
	records := b.dash.Query(sel)
	if len(records) == 0 {
		_, err := b.client.SendMessage(ctx, chat, "কোনো কেন্দ্র পাওয়া যায়নি।", nil)
		return err
	}

	png, err := b.render.RenderTable(records, title)
	if err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	return b.client.SendPhoto(ctx, chat, png, fmt.Sprintf("%s: %d কেন্দ্র", title, len(records)))
}

func (b *Bot) cmdRefresh(ctx context.Context, chat string) error {
	snap, err := b.dash.Sync(ctx)
	if err != nil {
		// The failure notice reaches the chat through the notifier.
		return err
	}
	_, err = b.client.SendMessage(ctx, chat, fmt.Sprintf("📊 মোট কেন্দ্র: <b>%d</b>", len(snap.Records)), nil)
	return err
}

func (b *Bot) cmdSource(ctx context.Context, chat, args string) error {
	if _, err := b.dash.UpdateSource(args); err != nil {
		// Invalid input raises a notice; nothing else to say.
		return nil
	}
	return b.cmdRefresh(ctx, chat)
}

func (b *Bot) sendDetails(ctx context.Context, chat, key string) error {
	r, ok := b.dash.Find(strings.TrimSpace(key))
	if !ok {
		_, err := b.client.SendMessage(ctx, chat, "কেন্দ্র পাওয়া যায়নি।", nil)
		return err
	}
	var markup *InlineKeyboardMarkup
	if u, ok := r.MapURL(); ok {
		markup = &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{{{Text: "🗺️ ম্যাপে দেখুন", URL: u}}}}
	}
	_, err := b.client.SendMessage(ctx, chat, formatDetails(r), markup)
	return err
}

// parseCommand splits "/cmd@bot args" into "cmd" and "args".
func parseCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	cmd, args, _ := strings.Cut(text[1:], " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), strings.TrimSpace(args)
}

// parseQuery reads "key=value" tokens as filters; everything else is search text.
func parseQuery(args string) (filter.Selection, error) {
	sel := filter.NewSelection()
	var words []string
	for _, tok := range strings.Fields(args) {
		k, v, found := strings.Cut(tok, "=")
		if !found || v == "" {
			words = append(words, tok)
			continue
		}
		d, err := filter.ParseDimension(k)
		if err != nil {
			words = append(words, tok)
			continue
		}
		if d == filter.TotalVoters {
			vr, err := filter.ParseVoterRange(v)
			if err != nil {
				return sel, err
			}
			v = string(vr)
		}
		sel = sel.With(d, v)
	}
	return sel.WithSearch(strings.Join(words, " ")), nil
}

func formatResults(records []center.Record) (string, *InlineKeyboardMarkup) {
	if len(records) == 0 {
		return "🔎 কোনো কেন্দ্র পাওয়া যায়নি।", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🔎 <b>%d</b> টি কেন্দ্র পাওয়া গেছে\n\n", len(records))

	markup := &InlineKeyboardMarkup{}
	shown := records
	if len(shown) > maxResults {
		shown = shown[:maxResults]
	}
	for _, r := range shown {
		fmt.Fprintf(&sb, "<b>%s. %s</b>\n📍 %s, %s | ⚠️ %s | 👥 %s\n👮 %s 📞 %s\n\n",
			escape(r.SerialNo), escape(r.CenterName),
			escape(r.Upazila), escape(r.Union), escape(r.RiskStatus), escape(r.TotalVoters),
			escape(r.OfficerName), escape(r.Phone))

		row := []InlineKeyboardButton{{Text: "ℹ️ " + r.SerialNo, CallbackData: callbackCenter + r.SerialNo}}
		if u, ok := r.MapURL(); ok {
			row = append(row, InlineKeyboardButton{Text: "🗺️ " + r.SerialNo, URL: u})
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, row)
	}
	if rest := len(records) - len(shown); rest > 0 {
		fmt.Fprintf(&sb, "… আরও %d টি কেন্দ্র", rest)
	}
	return strings.TrimSpace(sb.String()), markup
}

func formatDetails(r center.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s. %s</b>\n", escape(r.SerialNo), escape(r.CenterName))
	fmt.Fprintf(&sb, "📍 %s, %s\n", escape(r.Upazila), escape(r.Union))
	fmt.Fprintf(&sb, "🏷️ %s | %s\n", escape(r.Type), escape(r.VoteCentreType))
	fmt.Fprintf(&sb, "⚠️ %s\n", escape(r.RiskStatus))
	fmt.Fprintf(&sb, "👥 %s (পুরুষ %s, মহিলা %s, হিজড়া %s)\n",
		escape(r.TotalVoters), escape(r.MaleVoters), escape(r.FemaleVoters), escape(r.HijraVoters))
	fmt.Fprintf(&sb, "👮 %s, %s 📞 %s\n", escape(r.OfficerName), escape(r.Rank), escape(r.Phone))
	fmt.Fprintf(&sb, "🚓 পুলিশ: %s\n🛡️ বিজিবি: %s\n🪖 সেনা: %s\n⚡ র‍্যাব: %s\n",
		escape(r.PoliceTeam), escape(r.BGBTeam), escape(r.ArmyTeam), escape(r.RABTeam))
	fmt.Fprintf(&sb, "⚖️ ম্যাজিস্ট্রেট: %s", escape(r.MagistratePhone))
	return sb.String()
}

func escape(s string) string {
	return html.EscapeString(s)
}

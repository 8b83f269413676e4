package Web

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gorilla/websocket"

	"github.com/kiru56776/AI-math/Relay"
	"github.com/kiru56776/AI-math/Telegram"
	"github.com/kiru56776/AI-math/history"
	"github.com/kiru56776/AI-math/llm"
	"github.com/kiru56776/AI-math/misc"
)

// Server owns the webhook listener and the wired relay engine.
type Server struct {
	engine  *Relay.Engine
	bot     *Telegram.Bot
	store   history.Store
	msgChan chan Relay.WebMsg
}

// NewServer wires the full relay pipeline: history store, upstream client,
// Telegram transport and the engine, all explicitly constructed here.
func NewServer() (*Server, error) {
	store, err := history.Open()
	if err != nil {
		return nil, err
	}
	bot, err := Telegram.NewBot(misc.GetBotToken())
	if err != nil {
		store.Close()
		return nil, err
	}
	msgChan := make(chan Relay.WebMsg, 10)
	engine := Relay.NewEngine(Relay.EngineConfig{
		History:   history.NewAdapter(store),
		Client:    llm.NewRateLimitedClient(llm.NewGeminiClient(llm.GeminiConfigFromEnv()), misc.GetMaxRequest()),
		Messenger: bot,
		MsgChan:   msgChan,
	})
	return &Server{engine: engine, bot: bot, store: store, msgChan: msgChan}, nil
}

func (s *Server) StartWebServer(port string) {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.POST("/webhook/:token", s.handleUpdate)
	r.GET("/", s.setWebhook)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"msg": "ok"})
	})

	manager := &ClientManager{
		clients: make(map[string]map[*websocket.Conn]bool),
	}
	r.GET("/ws", func(c *gin.Context) {
		handleWebSocket(c, manager)
	})
	go startBroadcasting(manager, s.msgChan)

	httpServer := &http.Server{Addr: "0.0.0.0:" + port, Handler: r}
	go func() {
		_ = httpServer.ListenAndServe()
	}()
	misc.Info("web", "listening on port "+port+" as @"+s.bot.Username(), nil)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
	_ = s.store.Close()
	misc.Info("web", "server shutdown", nil)
}

// handleUpdate receives one Telegram update and dispatches it as an
// independent unit of work. Nothing here waits on the relay: the webhook
// must answer fast or Telegram re-delivers.
func (s *Server) handleUpdate(c *gin.Context) {
	if c.Param("token") != misc.GetBotToken() {
		c.JSON(http.StatusForbidden, gin.H{"error": "bad token"})
		return
	}
	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed update"})
		return
	}
	if ev, ok := eventFromUpdate(update); ok {
		go s.engine.HandleEvent(context.Background(), ev)
	}
	c.String(http.StatusOK, "!")
}

// setWebhook (re)registers this process as the bot's webhook target.
func (s *Server) setWebhook(c *gin.Context) {
	publicURL := misc.GetWebhookURL()
	if publicURL == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "WEBHOOK_URL is not set"})
		return
	}
	_ = s.bot.DeleteWebhook()
	if err := s.bot.RegisterWebhook(publicURL, misc.GetBotToken()); err != nil {
		misc.Warn("web", "webhook registration failed: "+err.Error(), nil)
		c.JSON(http.StatusBadGateway, gin.H{"error": "webhook registration failed"})
		return
	}
	c.String(http.StatusOK, "Webhook set successfully!")
}

// eventFromUpdate converts a Telegram update into a relay event.
// Updates without a usable message (edits, stickers, joins) are dropped.
func eventFromUpdate(update tgbotapi.Update) (Relay.Event, bool) {
	m := update.Message
	if m == nil || m.From == nil {
		return Relay.Event{}, false
	}
	ev := Relay.Event{
		Owner:     strconv.FormatInt(m.From.ID, 10),
		Chat:      m.Chat.ID,
		MessageID: m.MessageID,
	}
	if len(m.Photo) > 0 {
		// Photo sizes arrive smallest first; relay the largest rendition.
		ev.Kind = Relay.KindImage
		ev.MediaRef = m.Photo[len(m.Photo)-1].FileID
		ev.Text = m.Caption
		return ev, true
	}
	if m.Text != "" {
		ev.Kind = Relay.KindText
		ev.Text = m.Text
		return ev, true
	}
	return Relay.Event{}, false
}

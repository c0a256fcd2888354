package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"

	"github.com/XCI9/CardGame/card31"
	"github.com/XCI9/CardGame/server"
)

var restLogger = log.With().Str("logger_name", "server::rest").Logger()

//
// APP error definition
//
type appError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type dealRequest struct {
	Dealer int     `json:"dealer"`
	Hands  [][]int `json:"hands"`
}

type handlers struct {
	// ctx outlives the request; websocket players stay seated until it ends
	ctx context.Context
	srv *server.Server
}

// NewRouter builds the control plane for srv. Websocket players are served
// until ctx is cancelled.
func NewRouter(ctx context.Context, srv *server.Server) *gin.Engine {
	h := &handlers{ctx: ctx, srv: srv}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ready", h.ready)
	r.GET("/table", h.table)
	r.POST("/deal", h.deal)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", h.serveWebsocket)
	return r
}

// RunRestServer serves the control plane on addr until ctx is cancelled.
func RunRestServer(ctx context.Context, srv *server.Server, addr string) error {
	httpServer := &http.Server{
		Addr:    addr,
		Handler: NewRouter(ctx, srv),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	restLogger.Info().Msgf("REST server listening on %s", addr)
	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return errors.Wrapf(err, "REST server on %s failed", addr)
}

func (h *handlers) ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) table(c *gin.Context) {
	c.JSON(http.StatusOK, h.srv.Summary())
}

// deal fixes the cards of the following rounds. Used by test drivers.
func (h *handlers) deal(c *gin.Context) {
	var req dealRequest
	err := c.BindJSON(&req)
	if err != nil {
		restLogger.Error().Msgf("Failed to parse deal. Error: %v", err)
		c.IndentedJSON(http.StatusBadRequest, appError{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
		return
	}

	hands := make([]card31.Cards, len(req.Hands))
	for i, hand := range req.Hands {
		hands[i] = card31.NewCards(hand...)
	}
	dealer := card31.NewScriptedDealer(req.Dealer, hands)
	if _, err := dealer.Deal(len(hands)); err != nil {
		c.IndentedJSON(http.StatusBadRequest, appError{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
		return
	}
	h.srv.SetDealer(dealer)
	restLogger.Info().Msgf("Next rounds use a scripted deal. Dealer: %d", req.Dealer)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// serveWebsocket serves a player over a websocket. Every binary message carries
// exactly one length-prefixed frame, so the session sees a plain stream.
func (h *handlers) serveWebsocket(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		restLogger.Warn().Err(err).Msg("Failed to open websocket")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	h.srv.ServeConn(h.ctx, websocket.NetConn(h.ctx, conn, websocket.MessageBinary))
}

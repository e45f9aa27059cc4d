// Package api serves the bridge over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/thep2p/go-eth-outcall/internal/bridge"
	"github.com/thep2p/go-eth-outcall/internal/model"
	"github.com/thep2p/go-eth-outcall/internal/outcall"
)

// ShutdownTimeout bounds how long in-flight requests may run after the server is asked to stop.
const ShutdownTimeout = 5 * time.Second

// Server routes HTTP requests to a bridge Service.
type Server struct {
	logger  zerolog.Logger
	service *bridge.Service
	engine  *gin.Engine
}

// NewServer creates a Server for service.
func NewServer(logger zerolog.Logger, service *bridge.Service) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		logger:  logger.With().Str("component", "api").Logger(),
		service: service,
		engine:  gin.New(),
	}
	s.engine.Use(gin.Recovery(), RequestLogger(s.logger), Cors())

	s.engine.POST("/verify_ecdsa", s.verifyECDSA)
	s.engine.POST("/get_nft_owner", s.getNFTOwner)
	s.engine.POST("/verify_nft_owners", s.verifyNFTOwners)
	s.engine.GET("/networks", s.networks)
	if m := service.Metrics(); m != nil {
		s.engine.GET("/metrics", gin.WrapH(m.Handler()))
	}
	return s
}

// Handler returns the HTTP handler serving the routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", listener.Addr().String()).Msg("api listening")
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve api: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown api: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve api: %w", err)
	}
	s.logger.Info().Msg("api stopped")
	return nil
}

func (s *Server) verifyECDSA(c *gin.Context) {
	var req VerifyECDSAReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrRes{Err: err.Error()})
		return
	}
	valid, err := s.service.VerifyECDSA(req.Address, req.Message, req.Signature)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ValidRes{Valid: valid})
}

func (s *Server) getNFTOwner(c *gin.Context) {
	var req GetNFTOwnerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrRes{Err: err.Error()})
		return
	}
	owner, err := s.service.GetNFTOwner(c.Request.Context(), req.Network, req.ContractAddress, req.TokenID.Big())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, GetNFTOwnerRes{Owner: owner})
}

func (s *Server) verifyNFTOwners(c *gin.Context) {
	var req VerifyNFTOwnersReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrRes{Err: err.Error()})
		return
	}
	claims := make([]bridge.NFTClaim, 0, len(req.Claims))
	for _, claim := range req.Claims {
		claims = append(claims, bridge.NFTClaim{
			Network:  claim.Network,
			Contract: claim.ContractAddress,
			TokenID:  claim.TokenID.Big(),
			Owner:    claim.Owner,
		})
	}
	valid, err := s.service.VerifyNFTOwnerships(c.Request.Context(), claims)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ValidRes{Valid: valid})
}

func (s *Server) networks(c *gin.Context) {
	c.JSON(http.StatusOK, NetworksRes{Networks: s.service.Networks().Available()})
}

// fail writes err with the status of its error kind.
func (s *Server) fail(c *gin.Context, err error) {
	res := ErrRes{Err: err.Error()}
	var rejected *outcall.RejectError
	if errors.As(err, &rejected) {
		res.Code = rejected.Code.String()
	}
	c.JSON(StatusOf(err), res)
}

// StatusOf maps an error kind to an HTTP status. Caller mistakes are 400 and
// failures of the upstream endpoint are 502.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrInput), errors.Is(err, model.ErrEncoding), errors.Is(err, model.ErrUnknownNetwork):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrOutcall), errors.Is(err, model.ErrMalformedJSON):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

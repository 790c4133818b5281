package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dvalenz/roomreserve/api"
	"github.com/dvalenz/roomreserve/config"
	"github.com/dvalenz/roomreserve/internal/broadcast"
	"github.com/dvalenz/roomreserve/internal/service/reservation"
	"github.com/dvalenz/roomreserve/internal/service/rooms"
	"github.com/gin-gonic/gin"
)

// Run starts the HTTP server (REST + websocket broadcast) and blocks until
// the context is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, roomSvc rooms.RoomUseCase, reservationSvc reservation.ReservationUseCase, hub *broadcast.Hub) error {
	router := gin.Default()

	reservationHandler := api.NewReservationHandler(reservationSvc)
	roomHandler := api.NewRoomHandler(roomSvc, reservationSvc)

	reservationHandler.Register(router.Group("/reservations"))
	roomHandler.Register(router.Group("/rooms"))
	router.GET("/ws", broadcast.ServeWS(hub))

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

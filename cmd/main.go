package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mzjcars/stockdesk/internal/auth"
	"github.com/mzjcars/stockdesk/internal/db"
	"github.com/mzjcars/stockdesk/internal/events"
	"github.com/mzjcars/stockdesk/internal/handlers"
	"github.com/mzjcars/stockdesk/internal/media"
	"github.com/mzjcars/stockdesk/internal/middleware"
	"github.com/mzjcars/stockdesk/internal/models"
	"github.com/mzjcars/stockdesk/internal/notify"
	"github.com/mzjcars/stockdesk/internal/orders"
	"github.com/mzjcars/stockdesk/internal/requests"
	"github.com/mzjcars/stockdesk/internal/stock"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	log.SetFormatter(&log.JSONFormatter{})

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithFields(log.Fields{"error": err}).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	log.Info("Connected to MongoDB")

	database := db.Database(client)
	states := &db.MongoStateCollection{Collection: database.Collection(db.StateCollectionName)}
	requestColl := &db.MongoRequestCollection{Collection: database.Collection(db.RequestsCollectionName)}
	mediaColl := &db.MongoMediaSpecCollection{Collection: database.Collection(db.MediaSpecCollectionName)}
	orderColl := &db.MongoOrderCollection{Collection: database.Collection(db.OrdersCollectionName)}
	userColl := &db.MongoUserCollection{Collection: database.Collection(db.UsersCollectionName)}

	stockSvc := stock.NewService(states)
	requestsSvc := requests.NewService(requestColl, stockSvc).WithNotifier(notify.NewMersalClient())
	mediaSvc := media.NewService(mediaColl, stockSvc)
	ordersSvc := orders.NewService(orderColl)

	authService, err := auth.NewService()
	if err != nil {
		log.WithFields(log.Fields{"error": err}).Fatal("Failed to create auth service")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional MQTT fan-out of every stock change.
	if broker := os.Getenv("MQTT_BROKER"); broker != "" {
		publisher, err := events.NewPublisher(broker, "stockdesk-api")
		if err != nil {
			log.WithFields(log.Fields{"broker": broker, "error": err}).Error("MQTT unavailable, continuing without fan-out")
		} else {
			defer publisher.Close()
			stream, err := states.Watch(ctx)
			if err != nil {
				log.WithFields(log.Fields{"error": err}).Error("Failed to open stock change stream")
			} else {
				go publisher.Pump(ctx, stream)
			}
		}
	}

	authHandler := handlers.NewAuthHandler(authService, userColl)
	stockHandler := handlers.NewStockHandler(stockSvc)
	reportsHandler := handlers.NewReportsHandler(stockSvc, requestsSvc)
	requestsHandler := handlers.NewRequestsHandler(requestsSvc)
	ordersHandler := handlers.NewOrdersHandler(ordersSvc)
	mediaHandler := handlers.NewMediaHandler(mediaSvc)
	exportHandler := handlers.NewExportHandler(stockSvc)

	authMW := middleware.NewAuthMiddleware(authService)
	rateMW := middleware.NewRateLimitMiddleware()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/register", authHandler.Register)
	mux.HandleFunc("/api/auth/profile", authHandler.GetProfile)
	mux.Handle("/api/users", authMW.RequireRole(models.RoleAdmin)(http.HandlerFunc(authHandler.ListUsers)))
	mux.Handle("/api/users/role", authMW.RequireRole(models.RoleAdmin)(http.HandlerFunc(authHandler.UpdateRole)))

	page := func(name string, h http.HandlerFunc) http.Handler {
		return authMW.RequirePage(name)(h)
	}

	mux.Handle("/api/stock", page("cars", stockHandler.Snapshot))
	mux.Handle("/api/stock/vehicles", page("cars", stockHandler.Vehicles))
	mux.Handle("/api/stock/transfers", page("vt", stockHandler.Transfer))
	mux.Handle("/api/stock/transfers/approve", authMW.RequireRole(models.RoleAdmin)(http.HandlerFunc(stockHandler.Approve)))
	mux.Handle("/api/stock/export", page("cars", exportHandler.Download))
	mux.Handle("/api/stock/import", page("cars", exportHandler.Upload))

	mux.Handle("/api/reports/inventory", page("inventory", reportsHandler.Inventory))
	mux.Handle("/api/reports/shortages", page("inventory", reportsHandler.Shortages))
	mux.Handle("/api/reports/totals", page("dashboard", reportsHandler.Totals))
	mux.Handle("/api/reports/stats", page("dashboard", reportsHandler.Stats))

	mux.Handle("/api/requests", page("requests", requestsHandler.Requests))
	mux.Handle("/api/requests/advance", page("requests", requestsHandler.Advance))

	mux.Handle("/api/orders", page("activity", ordersHandler.Orders))
	mux.Handle("/api/orders/advance", page("activity", ordersHandler.Advance))

	mux.Handle("/api/media", page("media", mediaHandler.Specs))

	handler := rateMW.RateLimit(300, 60)(authMW.Authenticate(mux))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{"port": port}).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithFields(log.Fields{"error": err}).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithFields(log.Fields{"error": err}).Error("Shutdown failed")
	}
}

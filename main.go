package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"dailyops/backend/handlers"
	"dailyops/backend/logging"
	"dailyops/backend/middleware"
	"dailyops/backend/repositories"
	"dailyops/backend/services"
	"dailyops/backend/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CORS Middleware
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting DailyOps backend...")

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoDBName == "" {
		mongoDBName = "dailyops"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	userRepo := repositories.NewUserRepo(db)
	taskRepo := repositories.NewTaskRepo(db)
	notificationRepo := repositories.NewNotificationRepo(db)

	blackList := map[string]bool{}
	if path := os.Getenv("BLACKLIST_PATH"); path != "" {
		blackList, err = services.LoadBlackList(path)
		if err != nil {
			logging.Logger.Fatalf("Event ID: BLACKLIST_LOAD_FAILED, Description: Failed to load password blacklist: %v", err)
		}
	}

	webhookBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "WebhookCB",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	teamService := services.NewTeamService(userRepo)
	authService := services.NewAuthService(userRepo, teamService, blackList)
	taskService := services.NewTaskService(taskRepo, userRepo)
	taskHub := services.NewTaskHub(taskRepo)
	notificationService := services.NewNotificationService(notificationRepo, utils.NewHTTPClient(), webhookBreaker, os.Getenv("WEBHOOK_URL"))

	taskService.SetBroadcaster(taskHub)
	taskService.SetNotifier(notificationService)

	authHandler := &handlers.AuthHandler{AuthService: authService, TeamService: teamService}
	taskHandler := handlers.NewTaskHandler(taskService)
	streamHandler := handlers.NewStreamHandler(taskHub)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	r := mux.NewRouter()

	r.HandleFunc("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"healthy","timestamp":%q}`, time.Now().Format(time.RFC3339))
	}).Methods(http.MethodGet)

	// Javne rute
	r.HandleFunc("/api/auth/register/manager", authHandler.RegisterManager).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/register/labor", authHandler.RegisterLabor).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods(http.MethodPost)

	// Zaštićene rute
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(middleware.JWTAuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)
	protected.HandleFunc("/auth/team-code/regenerate", authHandler.RegenerateTeamCode).Methods(http.MethodPost)
	protected.HandleFunc("/team/members", authHandler.TeamMembers).Methods(http.MethodGet)

	protected.HandleFunc("/tasks", taskHandler.GetTasks).Methods(http.MethodGet)
	protected.HandleFunc("/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/stats", taskHandler.Stats).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/stream", streamHandler.StreamTasks).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/{taskID}", taskHandler.GetTask).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/{taskID}", taskHandler.UpdateTask).Methods(http.MethodPatch)
	protected.HandleFunc("/tasks/{taskID}", taskHandler.DeleteTask).Methods(http.MethodDelete)
	protected.HandleFunc("/tasks/{taskID}/status", taskHandler.ChangeTaskStatus).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/{taskID}/comments", taskHandler.AddComment).Methods(http.MethodPost)

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/{notificationID}/read", notificationHandler.MarkAsRead).Methods(http.MethodPatch)
	protected.HandleFunc("/notifications/{notificationID}", notificationHandler.DeleteNotification).Methods(http.MethodDelete)

	corsRouter := enableCORS(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	// WriteTimeout namerno nije postavljen: /api/tasks/stream drži odgovor otvorenim.
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", serverPort),
		Handler:     corsRouter,
		ReadTimeout: 10 * time.Second,
	}

	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost:%s", serverPort)
	if err := srv.ListenAndServe(); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lamngoc217/classvault/config"
	"github.com/lamngoc217/classvault/database"
	_ "github.com/lamngoc217/classvault/docs" // Swagger docs - auto-generated
	"github.com/lamngoc217/classvault/internal/controller"
	"github.com/lamngoc217/classvault/internal/logger"
	"github.com/lamngoc217/classvault/internal/middleware"
	"github.com/lamngoc217/classvault/internal/model"
	"github.com/lamngoc217/classvault/internal/policy"
	"github.com/lamngoc217/classvault/internal/repository"
	"github.com/lamngoc217/classvault/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title ClassVault API
// @version 1.0
// @description Multi-tenant classroom backend: chat sessions plus a teacher/student quiz workflow. Every row is guarded by per-principal access rules.
// @contact.name API Support
// @contact.email support@classvault.dev
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			policy.Classroom,     // Provides *policy.Engine, validated at startup
			NewGinEngine,         // Provides *gin.Engine
		),

		// Repositories Layer
		fx.Provide(
			repository.NewProfileRepository,
			repository.NewSessionRepository,
			repository.NewMessageRepository,
			repository.NewQuizRepository,
			repository.NewQuestionRepository,
			repository.NewAssignmentRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewProfileService,
			service.NewChatService,
			service.NewQuizService,
			service.NewAssignmentService,
		),

		// API Controllers Layer
		fx.Provide(
			controller.NewProfileController,
			controller.NewChatController,
			controller.NewQuizController,
			controller.NewAssignmentController,
		),

		// Invokers - Functions that are executed by Fx
		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Custom logger using Zerolog for Gin
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return "" // Zerolog handles the output, keep Gin quiet
	}))
	r.Use(gin.Recovery())

	// CORS Configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Be more specific in production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI
	// URL: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	profileCtrl *controller.ProfileController,
	chatCtrl *controller.ChatController,
	quizCtrl *controller.QuizController,
	assignmentCtrl *controller.AssignmentController,
) {
	// Everything under /api/v1 requires a valid bearer token. Row
	// visibility on top of that is enforced by the access rules.
	api := router.Group("/api/v1", middleware.RequireAuth(cfg))
	{
		api.GET("/profile", profileCtrl.GetProfile)
		api.PUT("/profile", profileCtrl.UpdateProfile)

		api.POST("/sessions", chatCtrl.CreateSession)
		api.GET("/sessions", chatCtrl.ListSessions)
		api.DELETE("/sessions/:session_id", chatCtrl.DeleteSession)
		api.GET("/sessions/:session_id/messages", chatCtrl.ListMessages)
		api.POST("/sessions/:session_id/messages", chatCtrl.AppendMessage)

		api.POST("/quizzes", quizCtrl.CreateQuiz)
		api.GET("/quizzes", quizCtrl.ListQuizzes)
		api.GET("/quizzes/:quiz_id", quizCtrl.GetQuiz)
		api.PUT("/quizzes/:quiz_id", quizCtrl.UpdateQuiz)
		api.POST("/quizzes/:quiz_id/send", quizCtrl.SendQuiz)
		api.GET("/quizzes/:quiz_id/assignments", quizCtrl.QuizResults)

		api.GET("/quiz-assignments", assignmentCtrl.ListAssignments)
		api.POST("/quiz-assignments/:assignment_id/submit", assignmentCtrl.SubmitAssignment)
	}

	// HTTP Server Setup and Lifecycle
	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("ClassVault API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	// Parents before children so foreign keys resolve.
	err := db.AutoMigrate(
		&model.Profile{},
		&model.Session{},
		&model.Message{},
		&model.Quiz{},
		&model.QuizQuestion{},
		&model.QuizAssignment{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}

package main

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"gamebit/internal/adapter/api"
	"gamebit/internal/adapter/api/handler"
	"gamebit/internal/adapter/api/middleware"
	"gamebit/internal/adapter/api/router"
	"gamebit/internal/adapter/repository"
	ws "gamebit/internal/infrastructure/websocket"
	"gamebit/internal/usecase"
	"gamebit/pkg/config"
	"gamebit/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProject})
	if err != nil {
		log.Fatalf("Failed to initialize firebase app: %v", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize firebase auth: %v", err)
	}

	fsClient, err := firestore.NewClient(ctx, cfg.FirebaseProject)
	if err != nil {
		log.Fatalf("Failed to initialize firestore: %v", err)
	}
	defer fsClient.Close()

	userRepo := repository.NewFirestoreUserRepository(fsClient)
	productRepo := repository.NewFirestoreProductRepository(fsClient)
	transactionRepo := repository.NewFirestoreTransactionRepository(fsClient)
	chatRepo := repository.NewFirestoreChatRepository(fsClient)

	manager := ws.NewManager(userRepo)
	manager.Start(ctx)

	userUseCase := usecase.NewUserUseCase(userRepo)
	adminUseCase := usecase.NewAdminUseCase(userRepo)
	transactionUseCase := usecase.NewTransactionUseCase(transactionRepo, productRepo, userRepo)
	chatUseCase := usecase.NewChatUseCase(chatRepo, userRepo, manager)

	authMiddleware := middleware.NewAuthMiddleware(authClient)
	roleMiddleware := middleware.NewRoleMiddleware(userRepo)

	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	router.Setup(e, router.Handlers{
		User:        handler.NewUserHandler(userUseCase),
		Transaction: handler.NewTransactionHandler(transactionUseCase),
		Chat:        handler.NewChatHandler(chatUseCase),
		Admin:       handler.NewAdminHandler(adminUseCase),
		WebSocket:   handler.NewWebSocketHandler(manager, chatUseCase, authMiddleware),
	}, router.Middlewares{
		Auth: authMiddleware,
		Role: roleMiddleware,
	})

	logger.Info("Starting server on port %s (%s)", cfg.ServerPort, cfg.Environment)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

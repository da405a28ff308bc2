package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucidpath/wellness-api/internal/config"
	"github.com/lucidpath/wellness-api/internal/database"
	"github.com/lucidpath/wellness-api/internal/logger"
	"github.com/lucidpath/wellness-api/internal/middleware"
	"github.com/lucidpath/wellness-api/internal/model"
	"github.com/lucidpath/wellness-api/internal/router"
	"github.com/lucidpath/wellness-api/internal/service"
	"github.com/lucidpath/wellness-api/pkg/refcode"
	"github.com/lucidpath/wellness-api/pkg/region"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "wellness-api",
	Short: "Lucid Path wellness API server",
	Long:  `Backend service for mood tracking, journaling, provider appointments and the community forum.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		startServer()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return err
		}
		if err := logger.Init(); err != nil {
			return err
		}
		if err := model.InitTables(database.GetDB()); err != nil {
			return fmt.Errorf("migrate tables: %w", err)
		}
		if config.GlobalConfig.Elasticsearch.Enabled {
			if err := model.InitESIndices(database.GetES()); err != nil {
				return fmt.Errorf("create search indices: %w", err)
			}
		}
		fmt.Println("migrations complete")
		return nil
	},
}

var (
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminEmail == "" || adminPassword == "" {
			return fmt.Errorf("both --email and --password are required")
		}
		if err := config.Init(configPath); err != nil {
			return err
		}
		if err := logger.Init(); err != nil {
			return err
		}
		db := database.GetDB()
		if err := model.InitTables(db); err != nil {
			return fmt.Errorf("migrate tables: %w", err)
		}

		var count int64
		if err := db.Model(&model.User{}).Where("email = ?", adminEmail).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("account %s already exists", adminEmail)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := model.User{
			Email:    adminEmail,
			Password: string(hash),
			Role:     model.RoleAdmin,
			Status:   1,
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
		fmt.Printf("administrator %s created (id=%d)\n", adminEmail, admin.ID)
		return nil
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the forum thread search index",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return err
		}
		if err := logger.Init(); err != nil {
			return err
		}
		if !config.GlobalConfig.Elasticsearch.Enabled {
			return fmt.Errorf("elasticsearch is disabled in the configuration")
		}
		database.GetDB()
		if err := service.NewThreadSearchService().ReindexAll(context.Background()); err != nil {
			return fmt.Errorf("reindex threads: %w", err)
		}
		fmt.Println("reindex complete")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config", "configuration directory")

	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "administrator email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "administrator password")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func initializeSystem() error {
	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	if err := logger.Init(); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("mysql connection failed")
	}

	if err := model.InitTables(db); err != nil {
		return fmt.Errorf("init tables: %w", err)
	}

	if config.GlobalConfig.Elasticsearch.Enabled {
		es := database.GetES()
		if es == nil {
			return fmt.Errorf("elasticsearch connection failed")
		}
		if err := model.InitESIndices(es); err != nil {
			return fmt.Errorf("init search indices: %w", err)
		}
	}

	if err := refcode.Init(config.GlobalConfig.Snowflake.MachineID); err != nil {
		return fmt.Errorf("init reference codes: %w", err)
	}

	// best effort, login region just degrades to "unknown"
	region.Init()

	return nil
}

func startServer() {
	if err := initializeSystem(); err != nil {
		fmt.Printf("system initialization failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	gin.SetMode(config.GlobalConfig.App.Mode)

	r := initRouter()

	maintenance := service.NewMaintenanceService()
	if err := maintenance.Start(); err != nil {
		logger.Fatal("maintenance jobs failed to start", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.GlobalConfig.App.Port),
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down...")

	maintenance.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}

	logger.Info("server stopped")
}

func initRouter() *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(logger.GinLogger())
	r.Use(middleware.Cors())

	router.Setup(r)

	return r
}

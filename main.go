package main

import (
	"log"
	"time"

	"github.com/BlindPI/bpiinc-arccm-42-sub024/config"
	controllers "github.com/BlindPI/bpiinc-arccm-42-sub024/controllers/certification"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/database"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/notify"
	authRoutes "github.com/BlindPI/bpiinc-arccm-42-sub024/routers/authRoutes"
	certificationRoutes "github.com/BlindPI/bpiinc-arccm-42-sub024/routers/certificationRoutes"
	courseRoutes "github.com/BlindPI/bpiinc-arccm-42-sub024/routers/courseRoutes"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/utils"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/workflow"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

const senderName = "Assured Response Training"

func main() {
	config.LoadConfig()
	database.ConnectDb()

	cfg := config.AppConfig
	db := database.Database.Db

	// Mail transport is selected by config; both implementations honor the
	// configured send timeout.
	var transport notify.Transport
	switch cfg.MailProvider {
	case "sendgrid":
		transport = notify.NewSendGridTransport(cfg.SendGridKey, cfg.EmailSender, senderName)
	default:
		transport = notify.NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailSender, senderName, cfg.EmailPassword)
	}

	mailTimeout := time.Duration(cfg.MailTimeout) * time.Second

	dispatcher := notify.NewDispatcher(db, transport, notify.DispatcherSettings{
		MailTimeout: mailTimeout,
	})
	processor := notify.NewRetryProcessor(db, transport, notify.RetrySettings{
		MaxRetries:  cfg.NotifyMaxRetries,
		BackoffBase: time.Duration(cfg.NotifyBackoffMinutes) * time.Minute,
		BatchSize:   cfg.NotifyRetryBatchSize,
		MailTimeout: mailTimeout,
	})
	monitor := notify.NewBounceMonitor(db, notify.BounceSettings{
		WindowHours:  cfg.BounceWindowHours,
		MinSample:    cfg.BounceMinSample,
		HighRate:     cfg.BounceRateHigh,
		CriticalRate: cfg.BounceRateCritical,
		DedupHours:   cfg.AlertDedupHours,
	})

	generator := workflow.NewRenderServiceGenerator(cfg.RenderServiceURL, time.Duration(cfg.RenderTimeout)*time.Second)
	engine := workflow.NewEngine(db, dispatcher)
	coordinator := workflow.NewCoordinator(db, generator, workflow.CoordinatorSettings{
		Timeout: time.Duration(cfg.RenderTimeout) * time.Second,
	})

	handler := controllers.NewHandler(engine, coordinator, dispatcher, processor, monitor,
		time.Duration(cfg.SweepStaleMinutes)*time.Minute)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	certificationRoutes.SetupCertificationRoutes(app)
	certificationRoutes.SetupAdminCertificationRoutes(app, handler)

	utils.InitializeNotificationJobs(cfg.RetryCronSpec, cfg.BounceCronSpec, cfg.SweepCronSpec,
		handler.RetryQueueJob, handler.BounceScanJob, handler.GenerationSweepJob)

	log.Printf("Server is running on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/caching"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/credstore"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/handlers"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/jobs/background"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/middleware"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/repositories"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/services"
	"github.com/datorqueglobal-del/Coaching-NLM/pkg/database"
)

const version = "1.0.0"

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(context.Background(), databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	tokenTTL := envInt("ACCESS_TOKEN_TTL_SECONDS", 3600)
	refreshTTL := envInt("REFRESH_TOKEN_TTL_SECONDS", 7*24*3600)

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	instituteRepo := repositories.NewInstituteRepo(pool)
	studentRepo := repositories.NewStudentRepo(pool)
	batchRepo := repositories.NewBatchRepo(pool)
	enrollmentRepo := repositories.NewEnrollmentRepo(pool)
	attendanceRepo := repositories.NewAttendanceRepo(pool)
	feeRepo := repositories.NewFeeRepo(pool)
	notificationRepo := repositories.NewNotificationRepo(pool)

	// Cache and credential store
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)
	credStore := credstore.NewPgxStore(pool)

	// Services
	sessionSvc := services.NewSessionService(userRepo, cacheSvc, services.DefaultSessionTTL, nil)
	tokenSvc := services.NewTokenService(cacheSvc, jwtSecret, tokenTTL, refreshTTL)
	instituteSvc := services.NewInstituteService(instituteRepo, userRepo, cacheSvc)
	provisioningSvc := services.NewProvisioningService(credStore, userRepo, studentRepo, batchRepo, enrollmentRepo, instituteRepo, sessionSvc)
	studentSvc := services.NewStudentService(studentRepo)
	batchSvc := services.NewBatchService(batchRepo, enrollmentRepo, studentRepo)
	attendanceSvc := services.NewAttendanceService(attendanceRepo, batchRepo, studentRepo)
	feeSvc := services.NewFeeService(feeRepo, studentRepo, batchRepo)
	notificationSvc := services.NewNotificationService(notificationRepo, feeRepo, studentRepo)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(credStore, sessionSvc, tokenSvc)
	instituteHandlers := handlers.NewInstituteHandlers(instituteSvc)
	provisioningHandlers := handlers.NewProvisioningHandlers(provisioningSvc)
	studentHandlers := handlers.NewStudentHandlers(studentSvc)
	batchHandlers := handlers.NewBatchHandlers(batchSvc)
	attendanceHandlers := handlers.NewAttendanceHandlers(attendanceSvc)
	feeHandlers := handlers.NewFeeHandlers(feeSvc)
	notificationHandlers := handlers.NewNotificationHandlers(notificationSvc)
	meHandlers := handlers.NewMeHandlers(studentSvc, batchSvc, attendanceSvc, feeSvc, notificationSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Background jobs
	scheduler := background.NewJobScheduler(instituteRepo, instituteSvc, feeSvc, notificationSvc)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	e := echo.New()

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	v1 := e.Group("/v1")

	// Authentication routes
	auth := v1.Group("/auth")
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)

	// Everything below requires a verified token and a resolved session.
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(middleware.JWTConfig(jwtSecret)))
	protected.Use(middleware.ResolveSession(sessionSvc))

	protected.GET("/me", authHandlers.Me)
	protected.POST("/auth/logout", authHandlers.Logout)

	// Super admin routes
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleSuperAdmin))
	admin.GET("/institutes", instituteHandlers.ListInstitutes)
	admin.POST("/institutes", instituteHandlers.CreateInstitute)
	admin.GET("/institutes/:id", instituteHandlers.GetInstitute)
	admin.PUT("/institutes/:id", instituteHandlers.UpdateInstitute)
	admin.PUT("/institutes/:id/subscription", instituteHandlers.UpdateSubscription)
	admin.DELETE("/institutes/:id", instituteHandlers.DeleteInstitute)
	admin.GET("/institutes/:id/users", instituteHandlers.ListMembers)
	admin.GET("/stats", instituteHandlers.GetStats)
	admin.GET("/coaching-admins", provisioningHandlers.ListCoachingAdmins)
	admin.POST("/coaching-admins", provisioningHandlers.CreateCoachingAdmin)
	admin.DELETE("/coaching-admins/:id", provisioningHandlers.DeleteCoachingAdmin)

	// Coaching admin routes, scoped to the caller's institute
	manage := protected.Group("/institute")
	manage.Use(middleware.RequireRole(models.RoleCoachingAdmin))
	manage.Use(middleware.RequireTenant())
	manage.Use(middleware.RequireWritableInstitute(instituteSvc))

	manage.GET("/students", studentHandlers.ListStudents)
	manage.POST("/students", provisioningHandlers.CreateStudent)
	manage.GET("/students/:id", studentHandlers.GetStudent)
	manage.PUT("/students/:id", provisioningHandlers.UpdateStudent)
	manage.PUT("/students/:id/password", provisioningHandlers.UpdateStudentPassword)
	manage.DELETE("/students/:id", provisioningHandlers.DeleteStudent)
	manage.GET("/students/:id/attendance", attendanceHandlers.StudentReport)
	manage.GET("/students/:id/fees", feeHandlers.StudentReport)

	manage.GET("/batches", batchHandlers.ListBatches)
	manage.POST("/batches", batchHandlers.CreateBatch)
	manage.GET("/batches/:id", batchHandlers.GetBatch)
	manage.PUT("/batches/:id", batchHandlers.UpdateBatch)
	manage.DELETE("/batches/:id", batchHandlers.DeleteBatch)
	manage.POST("/batches/:id/enroll", batchHandlers.EnrollStudent)
	manage.GET("/batches/:id/attendance", attendanceHandlers.ListByBatchDate)

	manage.POST("/attendance", attendanceHandlers.MarkAttendance)
	manage.POST("/attendance/bulk", attendanceHandlers.BulkMarkAttendance)

	manage.GET("/fees", feeHandlers.ListFeePayments)
	manage.POST("/fees", feeHandlers.CreateFeePayment)
	manage.PUT("/fees/:id/pay", feeHandlers.RecordPayment)
	manage.POST("/fees/mark-overdue", feeHandlers.MarkOverdue)

	manage.GET("/notifications", notificationHandlers.ListNotifications)
	manage.POST("/notifications", notificationHandlers.CreateNotification)
	manage.POST("/notifications/send", notificationHandlers.SendPending)
	manage.POST("/notifications/fee-reminders", notificationHandlers.SendFeeReminders)

	// Student self-service routes
	me := protected.Group("/student")
	me.Use(middleware.RequireRole(models.RoleStudent))
	me.Use(middleware.RequireTenant())
	me.GET("/profile", meHandlers.Profile)
	me.GET("/batches", meHandlers.Batches)
	me.GET("/attendance", meHandlers.Attendance)
	me.GET("/fees", meHandlers.Fees)
	me.GET("/notifications", meHandlers.Notifications)

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("CoachNLM server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}

func envInt(name string, fallback int) int {
	if value := os.Getenv(name); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

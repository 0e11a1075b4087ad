package background

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/repositories"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/services"
)

// JobScheduler runs the periodic sweeps: subscription expiry, overdue
// fee marking, fee due reminders and notification delivery.
type JobScheduler struct {
	scheduler       gocron.Scheduler
	instituteRepo   repositories.InstituteRepository
	instituteSvc    services.InstituteService
	feeSvc          services.FeeService
	notificationSvc services.NotificationService
	jobs            map[string]gocron.Job
	mu              sync.RWMutex
}

func NewJobScheduler(instituteRepo repositories.InstituteRepository, instituteSvc services.InstituteService, feeSvc services.FeeService, notificationSvc services.NotificationService) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:       scheduler,
		instituteRepo:   instituteRepo,
		instituteSvc:    instituteSvc,
		feeSvc:          feeSvc,
		notificationSvc: notificationSvc,
		jobs:            make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	subscriptionJob, err := js.scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(js.sweepExpiredSubscriptions, context.Background()),
		gocron.WithName("subscription-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create subscription sweep job: %v", err)
	} else {
		js.jobs["subscription-sweep"] = subscriptionJob
	}

	overdueJob, err := js.scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(js.sweepOverdueFees, context.Background()),
		gocron.WithName("overdue-fee-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create overdue fee job: %v", err)
	} else {
		js.jobs["overdue-fees"] = overdueJob
	}

	remindersJob, err := js.scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(js.sweepFeeReminders, context.Background()),
		gocron.WithName("fee-reminders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create fee reminders job: %v", err)
	} else {
		js.jobs["fee-reminders"] = remindersJob
	}

	deliveryJob, err := js.scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(js.deliverNotifications, context.Background()),
		gocron.WithName("notification-delivery"),
	)
	if err != nil {
		log.Printf("Failed to create notification delivery job: %v", err)
	} else {
		js.jobs["notification-delivery"] = deliveryJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

// sweepExpiredSubscriptions flips trial and active institutes past
// their expiry date to expired. The write guard then rejects member
// writes on the next request.
func (js *JobScheduler) sweepExpiredSubscriptions(ctx context.Context) error {
	log.Printf("Starting subscription sweep")

	institutes, err := js.instituteRepo.List(ctx, 1000, 0)
	if err != nil {
		log.Printf("Failed to list institutes for subscription sweep: %v", err)
		return err
	}

	now := time.Now()
	expired := 0
	for _, institute := range institutes {
		if !institute.SubscriptionLapsed(now) {
			continue
		}

		if err := js.instituteSvc.UpdateSubscriptionStatus(ctx, institute.ID, models.SubscriptionExpired, institute.SubscriptionExpiresAt); err != nil {
			log.Printf("Failed to expire subscription for institute %s: %v", institute.ID.String(), err)
			continue
		}
		expired++
		log.Printf("Subscription expired for institute %s", institute.Name)
	}

	log.Printf("Completed subscription sweep, %d institutes expired", expired)
	return nil
}

// sweepOverdueFees flips pending payments past their due date for
// every institute that still accepts writes.
func (js *JobScheduler) sweepOverdueFees(ctx context.Context) error {
	log.Printf("Starting overdue fee sweep")

	institutes, err := js.instituteRepo.List(ctx, 1000, 0)
	if err != nil {
		log.Printf("Failed to list institutes for overdue sweep: %v", err)
		return err
	}

	semaphore := make(chan struct{}, 5)
	var wg sync.WaitGroup

	for _, institute := range institutes {
		if !institute.AcceptsWrites() {
			continue
		}

		wg.Add(1)
		go func(instituteID uuid.UUID) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			updated, err := js.feeSvc.MarkOverdue(ctx, instituteID)
			if err != nil {
				log.Printf("Failed overdue sweep for institute %s: %v", instituteID.String(), err)
				return
			}
			if updated > 0 {
				log.Printf("Marked %d payments overdue for institute %s", updated, instituteID.String())
			}
		}(institute.ID)
	}

	wg.Wait()
	log.Printf("Completed overdue fee sweep for %d institutes", len(institutes))
	return nil
}

func (js *JobScheduler) sweepFeeReminders(ctx context.Context) error {
	log.Printf("Starting fee reminder sweep")

	institutes, err := js.instituteRepo.List(ctx, 1000, 0)
	if err != nil {
		log.Printf("Failed to list institutes for fee reminders: %v", err)
		return err
	}

	for _, institute := range institutes {
		if institute.SubscriptionStatus != models.SubscriptionActive && institute.SubscriptionStatus != models.SubscriptionTrial {
			continue
		}

		queued, err := js.notificationSvc.SendFeeReminders(ctx, institute.ID)
		if err != nil {
			log.Printf("Failed fee reminders for institute %s: %v", institute.ID.String(), err)
			continue
		}
		if queued > 0 {
			log.Printf("Queued %d fee reminders for institute %s", queued, institute.Name)
		}
	}

	log.Printf("Completed fee reminder sweep")
	return nil
}

func (js *JobScheduler) deliverNotifications(ctx context.Context) error {
	institutes, err := js.instituteRepo.List(ctx, 1000, 0)
	if err != nil {
		log.Printf("Failed to list institutes for notification delivery: %v", err)
		return err
	}

	for _, institute := range institutes {
		sent, err := js.notificationSvc.SendPending(ctx, institute.ID, 100)
		if err != nil {
			log.Printf("Failed notification delivery for institute %s: %v", institute.ID.String(), err)
			continue
		}
		if sent > 0 {
			log.Printf("Delivered %d notifications for institute %s", sent, institute.Name)
		}
	}
	return nil
}

// GetJobStatus returns information about scheduled jobs.
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make(map[string]interface{})
	status["total_jobs"] = len(js.jobs)
	jobs := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		jobs = append(jobs, name)
	}
	status["jobs"] = jobs
	return status
}

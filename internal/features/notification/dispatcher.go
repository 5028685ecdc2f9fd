package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-hrops/internal/features/approval"
	"go-hrops/internal/features/email"
	"go-hrops/internal/features/member"

	"go.uber.org/zap"
)

// Broadcaster fans an event out to connected websocket clients. Implemented
// by the system hub.
type Broadcaster interface {
	Broadcast(tenantID string, payload interface{})
}

// Dispatcher consumes approval events off a buffered channel. It implements
// approval.EventPublisher; a full buffer drops the event rather than blocking
// the approval transition.
type Dispatcher struct {
	Repo        NotificationRepository
	MemberRepo  member.MemberRepository
	EmailSvc    email.EmailService
	Broadcaster Broadcaster
	Logger      *zap.Logger

	mu     sync.Mutex
	closed bool
	events chan approval.Event
	done   chan struct{}
}

const eventBufferSize = 256

func NewDispatcher(
	repo NotificationRepository,
	memberRepo member.MemberRepository,
	emailSvc email.EmailService,
	broadcaster Broadcaster,
	logger *zap.Logger,
) *Dispatcher {
	d := &Dispatcher{
		Repo:        repo,
		MemberRepo:  memberRepo,
		EmailSvc:    emailSvc,
		Broadcaster: broadcaster,
		Logger:      logger,
		events:      make(chan approval.Event, eventBufferSize),
		done:        make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish never blocks the approval transition: a full buffer or a closed
// dispatcher drops the event with a warning.
func (d *Dispatcher) Publish(event approval.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.Logger.Warn("notification dispatcher closed, dropping event",
			zap.String("kind", string(event.Kind)),
			zap.String("entity_id", event.EntityID.Hex()))
		return
	}
	select {
	case d.events <- event:
	default:
		d.Logger.Warn("notification event buffer full, dropping event",
			zap.String("kind", string(event.Kind)),
			zap.String("entity_id", event.EntityID.Hex()))
	}
}

// Close drains buffered events and waits for the consumer to finish. Safe to
// call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.events)
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for event := range d.events {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		d.handle(ctx, event)
		cancel()
	}
}

func (d *Dispatcher) handle(ctx context.Context, event approval.Event) {
	title, message := describe(event)

	notifications, recipients := d.recipients(ctx, event, title, message)

	if err := d.Repo.CreateMany(ctx, notifications); err != nil {
		d.Logger.Error("failed to persist notifications",
			zap.String("kind", string(event.Kind)),
			zap.Error(err))
	}

	if len(recipients) > 0 && d.EmailSvc != nil {
		if err := d.EmailSvc.SendEmail(ctx, event.TenantID, recipients, title, message); err != nil {
			d.Logger.Debug("notification email skipped", zap.Error(err))
		}
	}

	if d.Broadcaster != nil {
		d.Broadcaster.Broadcast(event.TenantID.Hex(), event)
	}
}

// recipients builds the in-app rows and collects email addresses. Advanced
// events go to the next level's approvers, terminal events go back to the
// requester.
func (d *Dispatcher) recipients(ctx context.Context, event approval.Event, title, message string) ([]Notification, []string) {
	var notifications []Notification
	var emails []string

	if event.Kind == approval.EventAdvanced {
		for _, a := range event.Addressees {
			notifications = append(notifications, Notification{
				TenantID: event.TenantID,
				MemberID: a.ID,
				Title:    title,
				Message:  message,
				Type:     NotificationTypeApproval,
				Link:     entityLink(event),
			})
			if a.Email != "" {
				emails = append(emails, a.Email)
			}
		}
		return notifications, emails
	}

	notifications = append(notifications, Notification{
		TenantID: event.TenantID,
		MemberID: event.RequesterID,
		Title:    title,
		Message:  message,
		Type:     NotificationTypeApproval,
		Link:     entityLink(event),
	})
	if m, err := d.MemberRepo.FindByID(ctx, event.RequesterID); err == nil && m != nil && m.Email != "" {
		emails = append(emails, m.Email)
	}
	return notifications, emails
}

func describe(event approval.Event) (title, message string) {
	subject := event.EntityTitle
	if subject == "" {
		subject = fmt.Sprintf("%s %s", event.Module, event.EntityID.Hex())
	}

	switch event.Kind {
	case approval.EventAdvanced:
		return "Approval required",
			fmt.Sprintf("%s awaits your approval (level %d)", subject, event.LevelOrder+1)
	case approval.EventCompleted:
		return "Request approved",
			fmt.Sprintf("%s has been fully approved", subject)
	case approval.EventRejected:
		msg := fmt.Sprintf("%s was rejected", subject)
		if event.Notes != "" {
			msg += ": " + event.Notes
		}
		return "Request rejected", msg
	case approval.EventBypassed:
		return "Request approved",
			fmt.Sprintf("%s was approved by an administrator", subject)
	}
	return string(event.Kind), subject
}

func entityLink(event approval.Event) string {
	switch event.Module {
	case approval.ModuleLeaveRequest:
		return "/leave/" + event.EntityID.Hex()
	case approval.ModulePurchaseRequest:
		return "/purchases/" + event.EntityID.Hex()
	case approval.ModuleAssetRequest:
		return "/assets/" + event.EntityID.Hex()
	}
	return ""
}

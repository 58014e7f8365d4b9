package testutil

import (
	"context"

	"cloudformation-dynatrace-resource-providers/internal/domain/models"
)

// GetReply scripts one Get call of the fake gateway
type GetReply struct {
	Monitor      *models.SyntheticMonitor
	ServerTiming float64
	Err          error
}

// MutateReply scripts one Create/Update/Delete call of the fake gateway
type MutateReply struct {
	Monitor *models.SyntheticMonitor
	Err     error
}

// FakeGateway implements a scripted lifecycle.Gateway: each call consumes
// the next queued reply for that method and records the call for assertions.
// When a queue runs out, the last queued reply keeps being replayed.
type FakeGateway struct {
	getReplies    []GetReply
	createReplies []MutateReply
	updateReplies []MutateReply
	deleteReplies []MutateReply
	listMonitors  []models.SyntheticMonitor
	listErr       error

	GetCalls    []string
	CreateCalls []*models.SyntheticMonitor
	UpdateCalls []string
	DeleteCalls []string
	ListCalls   int
}

// NewFakeGateway creates a new FakeGateway
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{}
}

// QueueGet appends a scripted reply for the next Get call
func (g *FakeGateway) QueueGet(monitor *models.SyntheticMonitor, timing float64, err error) *FakeGateway {
	g.getReplies = append(g.getReplies, GetReply{Monitor: monitor, ServerTiming: timing, Err: err})
	return g
}

// QueueCreate appends a scripted reply for the next Create call
func (g *FakeGateway) QueueCreate(monitor *models.SyntheticMonitor, err error) *FakeGateway {
	g.createReplies = append(g.createReplies, MutateReply{Monitor: monitor, Err: err})
	return g
}

// QueueUpdate appends a scripted reply for the next Update call
func (g *FakeGateway) QueueUpdate(monitor *models.SyntheticMonitor, err error) *FakeGateway {
	g.updateReplies = append(g.updateReplies, MutateReply{Monitor: monitor, Err: err})
	return g
}

// QueueDelete appends a scripted reply for the next Delete call
func (g *FakeGateway) QueueDelete(err error) *FakeGateway {
	g.deleteReplies = append(g.deleteReplies, MutateReply{Err: err})
	return g
}

// SetList scripts the List reply
func (g *FakeGateway) SetList(monitors []models.SyntheticMonitor, err error) *FakeGateway {
	g.listMonitors = monitors
	g.listErr = err
	return g
}

func (g *FakeGateway) GetMonitor(ctx context.Context, entityID string) (*models.SyntheticMonitor, float64, error) {
	g.GetCalls = append(g.GetCalls, entityID)
	reply := takeReply(&g.getReplies)
	return reply.Monitor, reply.ServerTiming, reply.Err
}

func (g *FakeGateway) CreateMonitor(ctx context.Context, desired *models.SyntheticMonitor) (*models.SyntheticMonitor, error) {
	g.CreateCalls = append(g.CreateCalls, desired.Clone())
	reply := takeReply(&g.createReplies)
	return reply.Monitor, reply.Err
}

func (g *FakeGateway) UpdateMonitor(ctx context.Context, entityID string, desired *models.SyntheticMonitor) (*models.SyntheticMonitor, error) {
	g.UpdateCalls = append(g.UpdateCalls, entityID)
	reply := takeReply(&g.updateReplies)
	return reply.Monitor, reply.Err
}

func (g *FakeGateway) DeleteMonitor(ctx context.Context, entityID string) error {
	g.DeleteCalls = append(g.DeleteCalls, entityID)
	reply := takeReply(&g.deleteReplies)
	return reply.Err
}

func (g *FakeGateway) ListMonitors(ctx context.Context) ([]models.SyntheticMonitor, error) {
	g.ListCalls++
	return g.listMonitors, g.listErr
}

// takeReply consumes the head of the queue, keeping the last element around
// so exhausted scripts replay their final reply
func takeReply[T any](queue *[]T) T {
	var zero T
	if len(*queue) == 0 {
		return zero
	}
	head := (*queue)[0]
	if len(*queue) > 1 {
		*queue = (*queue)[1:]
	}
	return head
}

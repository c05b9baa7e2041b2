package queue

import (
	"time"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/postflow-studio/internal/service"
)

type Queue struct {
	client  *asynq.Client
	connect service.ConnectService
	secret  []byte
	timeout time.Duration
}

// NewQueue runs connect watchers as asynq tasks. Tokens in task payloads are
// sealed with secret when it is a valid AES key.
func NewQueue(
	client *asynq.Client,
	connect service.ConnectService,
	secret string,
	timeout time.Duration) *Queue {
	return &Queue{
		client:  client,
		connect: connect,
		secret:  []byte(secret),
		timeout: timeout,
	}
}

const TaskTypeConnectWatch = "connect:watch"

type ConnectWatchPayload struct {
	AttemptID string `json:"attempt_id"`
	Token     string `json:"token"`
	Sealed    bool   `json:"sealed"`
}

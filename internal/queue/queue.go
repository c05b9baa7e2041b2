package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/postflow-studio/pkg/utils"
)

// RunConnectWatch enqueues a watcher for the attempt. A failed watch is not
// retried; the attempt simply stays validating until it times out.
func (q *Queue) RunConnectWatch(ctx context.Context, attemptID, token string) error {
	payload, err := q.seal(ConnectWatchPayload{AttemptID: attemptID, Token: token})
	if err != nil {
		return err
	}
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeConnectWatch, taskPayload)

	opts := []asynq.Option{asynq.MaxRetry(0)}
	if q.timeout > 0 {
		opts = append(opts, asynq.Timeout(q.timeout+time.Minute))
	}
	info, err := q.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return err
	}

	slog.Info("connect watch enqueued", "attempt", attemptID, "task", info.ID)
	return nil
}

func (q *Queue) seal(p ConnectWatchPayload) (ConnectWatchPayload, error) {
	if !utils.ValidKey(q.secret) {
		return p, nil
	}
	sealed, err := utils.Encrypt([]byte(p.Token), q.secret)
	if err != nil {
		return p, err
	}
	p.Token = sealed
	p.Sealed = true
	return p, nil
}

func (q *Queue) open(p ConnectWatchPayload) (string, error) {
	if !p.Sealed {
		return p.Token, nil
	}
	return utils.Decrypt(p.Token, q.secret)
}

package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Worker drains the mail queue and routes every task through the
// notify service. Failures are logged, never retried into the workflow.
type Worker struct {
	ch    *amqp.Channel
	queue string
	svc   Service
	log   *slog.Logger
}

func NewWorker(ch *amqp.Channel, queue string, svc Service, log *slog.Logger) *Worker {
	return &Worker{ch: ch, queue: queue, svc: svc, log: log}
}

func (w *Worker) Run(ctx context.Context) error {
	deliveries, err := w.ch.ConsumeWithContext(ctx, w.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var task MailTask
	if err := json.Unmarshal(d.Body, &task); err != nil {
		w.log.Error("mail task: bad payload", "err", err)
		_ = d.Nack(false, false)
		return
	}
	if err := w.svc.SendMail(ctx, task.Ref, task.Template); err != nil {
		w.log.Error("mail task failed",
			"ref", task.Ref, "template", task.Template, "code", Code(err), "err", err)
		_ = d.Nack(false, false)
		return
	}
	w.log.Info("mail sent", "ref", task.Ref, "template", task.Template)
	_ = d.Ack(false)
}

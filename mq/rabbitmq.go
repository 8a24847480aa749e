package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"AuthQ/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// SMSQueue 短信任务队列名
const SMSQueue = "authq.sms"

// SMSJob 短信任务负载，字段与 worker 端约定保持一致
type SMSJob struct {
	Phone          string            `json:"phone"`
	SignName       string            `json:"sign_name"`
	TemplateCode   string            `json:"template_code"`
	TemplateParams map[string]string `json:"template_params,omitempty"`
}

// Dial 建立 RabbitMQ 连接
func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect rabbitmq: %w", err)
	}
	return conn, nil
}

// Publisher 负责向任务队列投递短信任务
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher 打开 channel 并声明队列（durable，幂等）
func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(SMSQueue, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", SMSQueue, err)
	}

	return &Publisher{ch: ch}, nil
}

// PublishSMS 投递一条短信任务，消息持久化以保证 broker 重启不丢
func (p *Publisher) PublishSMS(ctx context.Context, job SMSJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal sms job: %w", err)
	}

	err = p.ch.PublishWithContext(ctx, "", SMSQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish sms job: %w", err)
	}
	return nil
}

// Close 关闭 channel
func (p *Publisher) Close() error {
	return p.ch.Close()
}

// ConsumeSMS 消费短信任务直到 ctx 取消。handler 返回 nil 则 ack；
// 返回错误则记录并丢弃（broker 层保证至少一次，网关失败不无限重投）。
func ConsumeSMS(ctx context.Context, conn *amqp.Connection, handler func(SMSJob) error) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(SMSQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", SMSQueue, err)
	}

	deliveries, err := ch.Consume(SMSQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}

			var job SMSJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				logger.Error("丢弃无法解析的短信任务", logger.ErrorField(err))
				d.Nack(false, false)
				continue
			}

			if err := handler(job); err != nil {
				logger.Error("短信任务处理失败",
					logger.String("phone", job.Phone),
					logger.String("template", job.TemplateCode),
					logger.ErrorField(err))
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
	}
}

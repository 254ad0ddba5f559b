package device

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cast"
)

const natsRequestTimeout = 10 * time.Second

// encodedConn is the part of *nats.EncodedConn used by the controller.
type encodedConn interface {
	Subscribe(subject string, cb nats.Handler) (*nats.Subscription, error)
	Publish(subject string, v interface{}) error
}

type NATSController struct {
	nc            encodedConn
	deviceService IDeviceService
}

// ConnectNATS dials host and wraps the connection with the JSON encoder.
func ConnectNATS(host string) (*nats.EncodedConn, error) {
	nc, err := nats.Connect(host, nats.Name("devseed"))
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", host, err)
	}
	ec, err := nats.NewEncodedConn(nc, nats.JSON_ENCODER)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("json encoded connection: %w", err)
	}
	return ec, nil
}

func NewNATSController(nc *nats.EncodedConn, deviceService IDeviceService) *NATSController {
	return &NATSController{nc: nc, deviceService: deviceService}
}

func (controller *NATSController) Subscribe() error {
	handlers := []struct {
		topic   string
		handler nats.MsgHandler
	}{
		{FindAllTopic, controller.handleFindAll},
		{FindByIDTopic, controller.handleFindByID},
		{CountTopic, controller.handleCount},
		{SeedTopic, controller.handleSeed},
	}
	for _, h := range handlers {
		if _, err := controller.nc.Subscribe(h.topic, h.handler); err != nil {
			return fmt.Errorf("subscribe %s: %w", h.topic, err)
		}
	}
	return nil
}

func (controller *NATSController) handleFindAll(msg *nats.Msg) {
	log.Debugf("Received message on subject %s", msg.Subject)
	ctx, cancel := context.WithTimeout(context.Background(), natsRequestTimeout)
	defer cancel()
	devices, err := controller.deviceService.FindAll(ctx)
	if err != nil {
		log.Errorf("find all devices: %v", err)
		controller.replyError(msg, err)
		return
	}
	controller.reply(msg, devices)
}

func (controller *NATSController) handleFindByID(msg *nats.Msg) {
	log.Debugf("Received message on subject %s", msg.Subject)
	var request map[string]interface{}
	if err := json.Unmarshal(msg.Data, &request); err != nil {
		log.Errorf("unmarshal msg data: %v", err)
		controller.replyError(msg, err)
		return
	}
	id, err := cast.ToIntE(request["id"])
	if err != nil {
		log.Errorf("device id %v: %v", request["id"], err)
		controller.replyError(msg, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), natsRequestTimeout)
	defer cancel()
	devices, err := controller.deviceService.FindByID(ctx, id)
	if err != nil {
		log.Errorf("find devices by id %d: %v", id, err)
		controller.replyError(msg, err)
		return
	}
	controller.reply(msg, devices)
}

func (controller *NATSController) handleCount(msg *nats.Msg) {
	log.Debugf("Received message on subject %s", msg.Subject)
	ctx, cancel := context.WithTimeout(context.Background(), natsRequestTimeout)
	defer cancel()
	count, err := controller.deviceService.Count(ctx)
	if err != nil {
		log.Errorf("count devices: %v", err)
		controller.replyError(msg, err)
		return
	}
	controller.reply(msg, map[string]int64{"count": count})
}

func (controller *NATSController) handleSeed(msg *nats.Msg) {
	log.Debugf("Received message on subject %s", msg.Subject)
	ctx, cancel := context.WithTimeout(context.Background(), natsRequestTimeout)
	defer cancel()
	inserted, err := Seed(ctx, controller.deviceService)
	if err != nil {
		log.Errorf("seed devices: %v", err)
		controller.replyError(msg, err)
		return
	}
	controller.reply(msg, map[string]int{"inserted": inserted})
}

func (controller *NATSController) reply(msg *nats.Msg, v interface{}) {
	if msg.Reply == "" {
		return
	}
	if err := controller.nc.Publish(msg.Reply, v); err != nil {
		log.Errorf("publish reply on %s: %v", msg.Subject, err)
	}
}

func (controller *NATSController) replyError(msg *nats.Msg, err error) {
	controller.reply(msg, map[string]string{"error": err.Error()})
}

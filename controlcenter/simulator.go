package controlcenter

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"light-rpc/message"
	"light-rpc/server"
)

// Simulator is an in-process Control Center with a fixed set of lights.
// It answers the same three methods and broadcasts an Event after every
// change.
type Simulator struct {
	srv    *server.Server
	logger *zap.Logger

	mu      sync.Mutex
	devices map[string]*simDevice
}

type simDevice struct {
	info   Device
	lights Lights
}

// NewSimulator serves n Key Lights named "Key Light 1".."Key Light n".
func NewSimulator(n int, logger *zap.Logger, opts ...server.Option) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Simulator{
		srv:     server.NewServer(append([]server.Option{server.WithLogger(logger)}, opts...)...),
		logger:  logger,
		devices: make(map[string]*simDevice, n),
	}
	for i := 1; i <= n; i++ {
		s.add(Device{
			DeviceID:             fmt.Sprintf("KL%06d", i),
			FirmwareVersion:      "1.0.3",
			FirmwareVersionBuild: 218,
			Name:                 fmt.Sprintf("Key Light %d", i),
			Type:                 53,
		})
	}
	if err := s.srv.Register(&lightsService{sim: s}); err != nil {
		// lightsService has a fixed method set
		panic(err)
	}
	return s
}

func (s *Simulator) add(d Device) {
	s.devices[d.DeviceID] = &simDevice{
		info: d,
		lights: Lights{
			Brightness:     50,
			BrightnessMax:  100,
			BrightnessMin:  3,
			Temperature:    200,
			TemperatureMax: 344,
			TemperatureMin: 143,
		},
	}
}

// Server is the JSON-RPC peer to serve over a listener.
func (s *Simulator) Server() *server.Server {
	return s.srv
}

// Lights returns the current state of one device.
func (s *Simulator) Lights(id string) (Lights, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok {
		return Lights{}, false
	}
	return d.lights, true
}

func (s *Simulator) list() []Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Device, 0, len(s.devices))
	for _, d := range s.devices {
		out = append(out, d.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out
}

func (s *Simulator) get(id string) (DeviceConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok {
		return DeviceConfiguration{}, unknownDevice(id)
	}
	return DeviceConfiguration{DeviceID: id, Lights: d.lights}, nil
}

// set stores a change, clamping values to the device's ranges.
func (s *Simulator) set(change SetDeviceConfiguration) (Lights, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[change.DeviceID]
	if !ok {
		return Lights{}, unknownDevice(change.DeviceID)
	}
	l := &d.lights
	l.On = change.Lights.On
	l.Brightness = clamp(change.Lights.Brightness, l.BrightnessMin, l.BrightnessMax)
	l.Temperature = clamp(change.Lights.Temperature, l.TemperatureMin, l.TemperatureMax)
	return *l, nil
}

func clamp(v, lo, hi uint16) uint16 {
	return max(lo, min(v, hi))
}

func unknownDevice(id string) error {
	return &message.Error{Code: message.CodeInvalidParams, Message: "unknown device " + id}
}

// lightsService holds the RPC methods; its method names are the wire names.
type lightsService struct {
	sim *Simulator
}

type deviceRef struct {
	DeviceID string `json:"deviceID"`
}

func (l *lightsService) GetDevices(_ *struct{}, reply *[]Device) error {
	*reply = l.sim.list()
	return nil
}

func (l *lightsService) GetDeviceConfiguration(args *deviceRef, reply *DeviceConfiguration) error {
	config, err := l.sim.get(args.DeviceID)
	if err != nil {
		return err
	}
	*reply = config
	return nil
}

// SetDeviceConfiguration replies with null.
func (l *lightsService) SetDeviceConfiguration(ctx context.Context, args *SetDeviceConfiguration, _ *any) error {
	lights, err := l.sim.set(*args)
	if err != nil {
		return err
	}
	l.sim.logger.Info("device configuration changed",
		zap.String("device", args.DeviceID),
		zap.Bool("on", lights.On),
		zap.Uint16("brightness", lights.Brightness),
		zap.Uint16("temperature", lights.Temperature))

	event := Event{Event: EventConfigurationChanged, DeviceID: args.DeviceID, Lights: &lights}
	if err := l.sim.srv.Notify(ctx, event); err != nil {
		l.sim.logger.Debug("notify failed", zap.Error(err))
	}
	return nil
}

// Package controlcenter speaks the Elgato Control Center vocabulary over a
// JSON-RPC client: listing devices, reading and changing their lights.
package controlcenter

import (
	"context"
	"errors"
	"fmt"

	"light-rpc/client"
)

// DefaultURL is where Control Center listens on the local machine.
const DefaultURL = "ws://127.0.0.1:1804/"

const (
	methodGetDevices             = "getDevices"
	methodGetDeviceConfiguration = "getDeviceConfiguration"
	methodSetDeviceConfiguration = "setDeviceConfiguration"
)

var ErrDeviceNotFound = errors.New("device not found")

// DeviceNotFoundError names the device argument that matched nothing.
type DeviceNotFoundError struct {
	Device string
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("Device %q not found.", e.Device)
}

func (e *DeviceNotFoundError) Is(target error) bool {
	return target == ErrDeviceNotFound
}

// Caller is the part of *client.Client used here.
type Caller interface {
	Call(ctx context.Context, method string, params, reply any) error
}

type ControlCenter struct {
	caller Caller
}

func New(c Caller) *ControlCenter {
	return &ControlCenter{caller: c}
}

// Connect dials url (DefaultURL when empty). Close the returned client
// when done.
func Connect(ctx context.Context, url string, opts ...client.Option) (*ControlCenter, *client.Client, error) {
	if url == "" {
		url = DefaultURL
	}
	c, err := client.Dial(ctx, url, opts...)
	if err != nil {
		return nil, nil, err
	}
	return New(c), c, nil
}

func (cc *ControlCenter) Devices(ctx context.Context) ([]Device, error) {
	var devices []Device
	if err := cc.caller.Call(ctx, methodGetDevices, nil, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

func (cc *ControlCenter) DeviceConfiguration(ctx context.Context, id string) (DeviceConfiguration, error) {
	var config DeviceConfiguration
	params := map[string]string{"deviceID": id}
	if err := cc.caller.Call(ctx, methodGetDeviceConfiguration, params, &config); err != nil {
		return DeviceConfiguration{}, err
	}
	return config, nil
}

func (cc *ControlCenter) SetDeviceConfiguration(ctx context.Context, config SetDeviceConfiguration) error {
	return cc.caller.Call(ctx, methodSetDeviceConfiguration, config, nil)
}

// FindDevice returns the device whose id or name equals device.
func FindDevice(devices []Device, device string) (Device, error) {
	for _, d := range devices {
		if d.DeviceID == device || d.Name == device {
			return d, nil
		}
	}
	return Device{}, &DeviceNotFoundError{Device: device}
}

// ModifyDeviceOrAll applies change to the device matching device by id or
// name, or to every device when device is empty. Each device is read,
// changed and written back in turn; the first failure stops the walk.
func (cc *ControlCenter) ModifyDeviceOrAll(ctx context.Context, device string, change func(DeviceConfiguration) SetDeviceConfiguration) error {
	devices, err := cc.Devices(ctx)
	if err != nil {
		return err
	}

	if device != "" {
		found, err := FindDevice(devices, device)
		if err != nil {
			return err
		}
		devices = []Device{found}
	}

	for _, d := range devices {
		config, err := cc.DeviceConfiguration(ctx, d.DeviceID)
		if err != nil {
			return err
		}
		if err := cc.SetDeviceConfiguration(ctx, change(config)); err != nil {
			return err
		}
	}
	return nil
}

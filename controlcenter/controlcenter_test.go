package controlcenter

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"light-rpc/client"
	"light-rpc/message"
)

func startSimulator(t *testing.T, n int) (*Simulator, string) {
	t.Helper()
	sim := NewSimulator(n, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go sim.Server().Serve(ln)
	t.Cleanup(func() { sim.Server().Shutdown(time.Second) })
	return sim, "ws://" + ln.Addr().String() + "/"
}

func connect(t *testing.T, url string, opts ...client.Option) *ControlCenter {
	t.Helper()
	cc, c, err := Connect(context.Background(), url, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return cc
}

func TestModifyBuilders(t *testing.T) {
	config := DeviceConfiguration{
		DeviceID: "KL1",
		Lights:   Lights{Brightness: 10, On: false, Temperature: 200, BrightnessMax: 100},
	}

	change := config.Modify().SetOn(true).SetBrightness(80)
	assert.Equal(t, SetDeviceConfiguration{
		DeviceID: "KL1",
		Lights:   SetLights{Brightness: 80, On: true, Temperature: 200},
	}, change)

	// builders return a changed copy
	base := config.Modify()
	base.SetOn(true)
	assert.False(t, base.Lights.On)
}

func TestSetDeviceConfigurationWireShape(t *testing.T) {
	raw, err := json.Marshal(SetDeviceConfiguration{DeviceID: "KL1", Lights: SetLights{Brightness: 5, On: true, Temperature: 143}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"deviceID":"KL1","lights":{"brightness":5,"on":true,"temperature":143}}`, string(raw))
}

func TestDevices(t *testing.T) {
	_, url := startSimulator(t, 2)
	cc := connect(t, url)

	devices, err := cc.Devices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "KL000001", devices[0].DeviceID)
	assert.Equal(t, "Key Light 2", devices[1].Name)
}

func TestDeviceConfigurationRoundTrip(t *testing.T) {
	sim, url := startSimulator(t, 1)
	cc := connect(t, url)
	ctx := context.Background()

	config, err := cc.DeviceConfiguration(ctx, "KL000001")
	require.NoError(t, err)
	assert.Equal(t, uint16(3), config.Lights.BrightnessMin)

	require.NoError(t, cc.SetDeviceConfiguration(ctx, config.Modify().SetOn(true).SetTemperature(1000)))

	lights, ok := sim.Lights("KL000001")
	require.True(t, ok)
	assert.True(t, lights.On)
	assert.Equal(t, uint16(344), lights.Temperature, "temperature is clamped to the device range")
}

func TestUnknownDeviceIsRemoteError(t *testing.T) {
	_, url := startSimulator(t, 1)
	cc := connect(t, url)

	_, err := cc.DeviceConfiguration(context.Background(), "nope")
	var remote *client.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, message.CodeInvalidParams, remote.Code)
}

func TestModifyDeviceOrAll(t *testing.T) {
	sim, url := startSimulator(t, 3)
	cc := connect(t, url)
	ctx := context.Background()

	on := func(c DeviceConfiguration) SetDeviceConfiguration { return c.Modify().SetOn(true) }

	require.NoError(t, cc.ModifyDeviceOrAll(ctx, "Key Light 2", on))
	l1, _ := sim.Lights("KL000001")
	l2, _ := sim.Lights("KL000002")
	assert.False(t, l1.On)
	assert.True(t, l2.On)

	require.NoError(t, cc.ModifyDeviceOrAll(ctx, "KL000003", func(c DeviceConfiguration) SetDeviceConfiguration {
		return c.Modify().SetBrightness(70)
	}))
	l3, _ := sim.Lights("KL000003")
	assert.Equal(t, uint16(70), l3.Brightness)

	require.NoError(t, cc.ModifyDeviceOrAll(ctx, "", on))
	for _, id := range []string{"KL000001", "KL000002", "KL000003"} {
		l, _ := sim.Lights(id)
		assert.True(t, l.On, id)
	}
}

func TestModifyUnknownDevice(t *testing.T) {
	_, url := startSimulator(t, 1)
	cc := connect(t, url)

	err := cc.ModifyDeviceOrAll(context.Background(), "Ring Light", func(c DeviceConfiguration) SetDeviceConfiguration {
		return c.Modify()
	})
	require.ErrorIs(t, err, ErrDeviceNotFound)
	assert.Equal(t, `Device "Ring Light" not found.`, err.Error())
}

func TestChangeIsBroadcast(t *testing.T) {
	sim, url := startSimulator(t, 1)

	events := make(chan Event, 4)
	cc := connect(t, url, client.WithBroadcastHandler(func(r *message.Response) {
		var e Event
		if json.Unmarshal(r.Result, &e) == nil {
			events <- e
		}
	}))
	require.Eventually(t, func() bool { return sim.Server().Conns() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, cc.ModifyDeviceOrAll(context.Background(), "", func(c DeviceConfiguration) SetDeviceConfiguration {
		return c.Modify().SetBrightness(1)
	}))

	select {
	case e := <-events:
		assert.Equal(t, EventConfigurationChanged, e.Event)
		assert.Equal(t, "KL000001", e.DeviceID)
		require.NotNil(t, e.Lights)
		assert.Equal(t, uint16(3), e.Lights.Brightness)
	case <-time.After(time.Second):
		t.Fatal("no broadcast after change")
	}
}

func TestFindDevice(t *testing.T) {
	devices := []Device{{DeviceID: "a", Name: "Desk"}, {DeviceID: "b", Name: "Shelf"}}

	d, err := FindDevice(devices, "Shelf")
	require.NoError(t, err)
	assert.Equal(t, "b", d.DeviceID)

	d, err = FindDevice(devices, "a")
	require.NoError(t, err)
	assert.Equal(t, "Desk", d.Name)

	_, err = FindDevice(devices, "c")
	require.ErrorIs(t, err, ErrDeviceNotFound)
}

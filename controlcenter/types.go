package controlcenter

// Device is one entry of getDevices.
type Device struct {
	DeviceID             string `json:"deviceID"`
	FirmwareVersion      string `json:"firmwareVersion"`
	FirmwareVersionBuild int    `json:"firmwareVersionBuild"`
	Name                 string `json:"name"`
	Type                 int    `json:"type"`
}

// DeviceConfiguration is the reply of getDeviceConfiguration.
type DeviceConfiguration struct {
	DeviceID string `json:"deviceID"`
	Lights   Lights `json:"lights"`
}

// Lights is the light state of a device with its permitted ranges.
// Temperature is in the device's own units (mired, 143..344 on Key Lights).
type Lights struct {
	Brightness     uint16 `json:"brightness"`
	BrightnessMax  uint16 `json:"brightnessMax"`
	BrightnessMin  uint16 `json:"brightnessMin"`
	On             bool   `json:"on"`
	Temperature    uint16 `json:"temperature"`
	TemperatureMax uint16 `json:"temperatureMax"`
	TemperatureMin uint16 `json:"temperatureMin"`
}

// SetDeviceConfiguration is the params of setDeviceConfiguration.
type SetDeviceConfiguration struct {
	DeviceID string    `json:"deviceID"`
	Lights   SetLights `json:"lights"`
}

type SetLights struct {
	Brightness  uint16 `json:"brightness"`
	On          bool   `json:"on"`
	Temperature uint16 `json:"temperature"`
}

// Modify starts a change from the current configuration, so fields the
// caller does not touch are sent back unchanged.
func (c DeviceConfiguration) Modify() SetDeviceConfiguration {
	return SetDeviceConfiguration{
		DeviceID: c.DeviceID,
		Lights:   c.Lights.Modify(),
	}
}

func (l Lights) Modify() SetLights {
	return SetLights{
		Brightness:  l.Brightness,
		On:          l.On,
		Temperature: l.Temperature,
	}
}

func (s SetDeviceConfiguration) SetOn(on bool) SetDeviceConfiguration {
	s.Lights.On = on
	return s
}

func (s SetDeviceConfiguration) SetBrightness(brightness uint16) SetDeviceConfiguration {
	s.Lights.Brightness = brightness
	return s
}

func (s SetDeviceConfiguration) SetTemperature(temperature uint16) SetDeviceConfiguration {
	s.Lights.Temperature = temperature
	return s
}

// Event is what the simulator broadcasts after a configuration change.
type Event struct {
	Event    string  `json:"event"`
	DeviceID string  `json:"deviceID,omitempty"`
	Lights   *Lights `json:"lights,omitempty"`
}

const EventConfigurationChanged = "deviceConfigurationChanged"

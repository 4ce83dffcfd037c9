package display

import (
	"fmt"
	"image"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"

	"github.com/kriansa/drive-pi/internal/log"
)

// OLED drives a 128x64 SSD1306 display on I2C address 0x3C
type OLED struct {
	bus i2c.BusCloser
	dev *ssd1306.Dev
}

// OpenOLED initializes the host drivers and opens the display on the named
// I2C bus. An empty name picks the first bus available.
func OpenOLED(busName string) (*OLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initialize host drivers: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("initialize ssd1306: %w", err)
	}

	log.Debug("display ready", "bus", bus.String(), "bounds", dev.Bounds())
	return &OLED{bus: bus, dev: dev}, nil
}

// Show draws the frame. Pixels are converted to on or off by the driver.
func (o *OLED) Show(img image.Image) error {
	if err := o.dev.Draw(o.dev.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	return nil
}

// Close blanks the display and releases the bus
func (o *OLED) Close() error {
	if err := o.dev.Halt(); err != nil {
		log.Warn("failed to turn display off", "error", err)
	}
	if err := o.bus.Close(); err != nil {
		return fmt.Errorf("close i2c bus: %w", err)
	}
	return nil
}

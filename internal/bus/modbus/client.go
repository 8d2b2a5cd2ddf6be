// internal/bus/modbus/client.go
package modbus

import (
	"encoding/binary"
	"time"

	"github.com/goburrow/modbus"
	"github.com/pkg/errors"
)

// Client implements bus.Transport over Modbus RTU.
// One serial handler is shared by every device on the bus; the slave id
// is re-addressed before each exchange. This is only safe under the
// single-threaded bus model.
type Client struct {
	handler *modbus.RTUClientHandler
	client  modbus.Client
}

// Config is minimal transport config.
type Config struct {
	Port     string
	BaudRate int
	DataBits int
	Parity   string
	StopBits int
	Timeout  time.Duration
}

// New opens the serial port and returns a connected RTU client.
func New(cfg Config) (*Client, error) {
	if cfg.Port == "" {
		return nil, errors.New("modbus client: port required")
	}

	h := modbus.NewRTUClientHandler(cfg.Port)
	h.BaudRate = cfg.BaudRate
	h.DataBits = cfg.DataBits
	h.Parity = cfg.Parity
	h.StopBits = cfg.StopBits
	h.Timeout = cfg.Timeout

	if err := h.Connect(); err != nil {
		return nil, errors.Wrapf(err, "modbus client: connect %s", cfg.Port)
	}

	return &Client{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

// ReadDataPoint reads one holding register from the addressed device.
// No retries: a failed exchange is reported as-is.
func (c *Client) ReadDataPoint(deviceID uint8, dataPoint uint16) (uint16, error) {
	c.handler.SlaveId = deviceID

	raw, err := c.client.ReadHoldingRegisters(dataPoint, 1)
	if err != nil {
		return 0, err
	}
	if len(raw) < 2 {
		return 0, errors.Errorf("modbus client: short register payload: %d bytes", len(raw))
	}

	return binary.BigEndian.Uint16(raw), nil
}

// Close closes the serial port.
func (c *Client) Close() error {
	if c == nil || c.handler == nil {
		return nil
	}
	return c.handler.Close()
}

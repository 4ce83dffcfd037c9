//go:build integration

package panelclient

import (
	"encoding/json"
	"fmt"

	"github.com/kriansa/drive-pi/tests/integration/vm"
)

// VMSocketClient calls the control socket of a panel running in a VM
type VMSocketClient struct {
	vm         vm.VM
	socketPath string
}

// NewVMSocketPanelClient creates a new client for the panel control socket
func NewVMSocketPanelClient(vm vm.VM, socketPath string) *VMSocketClient {
	return &VMSocketClient{
		vm:         vm,
		socketPath: socketPath,
	}
}

// callPanel makes an HTTP request to the panel over the Unix socket
// Since we can't directly access the socket from the host, we use curl inside the VM
func (c *VMSocketClient) callPanel(method string, request, response any) error {
	reqBody, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	// Use curl to call the Unix socket from inside the VM
	cmd := fmt.Sprintf(
		`sudo curl -s --unix-socket %s -X POST -H "Content-Type: application/json" -d '%s' http://localhost/%s`,
		c.socketPath,
		string(reqBody),
		method,
	)

	output, err := c.vm.Run(cmd)
	if err != nil {
		return fmt.Errorf("call panel: %w: %s", err, output)
	}

	if err := json.Unmarshal([]byte(output), response); err != nil {
		return fmt.Errorf("unmarshal response: %w: %s", err, output)
	}

	return nil
}

// Press presses a button and returns the screen once the press is applied
func (c *VMSocketClient) Press(button string) (*Screen, error) {
	var resp Screen
	if err := c.callPanel("Panel.Press", PressRequest{Button: button}, &resp); err != nil {
		return nil, err
	}
	if resp.Err != "" {
		return nil, fmt.Errorf("panel error: %s", resp.Err)
	}
	return &resp, nil
}

// Screen returns the current screen
func (c *VMSocketClient) Screen() (*Screen, error) {
	var resp Screen
	if err := c.callPanel("Panel.Screen", struct{}{}, &resp); err != nil {
		return nil, err
	}
	if resp.Err != "" {
		return nil, fmt.Errorf("panel error: %s", resp.Err)
	}
	return &resp, nil
}

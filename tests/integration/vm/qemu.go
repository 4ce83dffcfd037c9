//go:build integration

package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/kriansa/drive-pi/tests/integration/log"
)

const (
	defaultImage    = "../images/fedora-drive-pi.qcow2"
	defaultSSHPort  = 10022
	removableDevice = "/dev/vdb"
)

// QEMU is a guest booted from a throwaway overlay of the base image, with a
// raw scratch disk attached as its removable drive.
type QEMU struct {
	mu        sync.Mutex
	cmd       *exec.Cmd
	sshClient *ssh.Client
	config    QEMUConfig
	// images created for this run, removed on Stop
	overlay string
	scratch string
}

// QEMUConfig holds configuration for starting a VM
type QEMUConfig struct {
	ImagePath  string
	SSHPort    int
	SSHUser    string
	SSHPass    string
	SSHTimeout time.Duration
	Memory     int
	CPUs       int
	// DiskSize is the size of the scratch disk standing in for a USB drive,
	// e.g. "64M".
	DiskSize string
}

// StartQEMUVM boots the default test image. VM_IMAGE and VM_SSH_PORT
// override the image path and the forwarded SSH port.
func StartQEMUVM(ctx context.Context) (*QEMU, error) {
	imagePath, err := imagePath()
	if err != nil {
		return nil, err
	}

	port := defaultSSHPort
	if v := os.Getenv("VM_SSH_PORT"); v != "" {
		if port, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid VM_SSH_PORT %q: %w", v, err)
		}
	}

	return StartQEMUVMWithConfig(ctx, QEMUConfig{
		ImagePath:  imagePath,
		SSHPort:    port,
		SSHUser:    "fedora",
		SSHPass:    "fedora",
		SSHTimeout: time.Minute,
		Memory:     1024,
		CPUs:       2,
		DiskSize:   "64M",
	})
}

// StartQEMUVMWithConfig launches QEMU. It does not wait for the guest; call
// WaitForSSH before running commands.
func StartQEMUVMWithConfig(ctx context.Context, config QEMUConfig) (*QEMU, error) {
	if config.ImagePath == "" {
		return nil, errors.New("image path is required")
	}
	if _, err := os.Stat(config.ImagePath); err != nil {
		return nil, fmt.Errorf("image not found: %w", err)
	}

	vm := &QEMU{
		config:  config,
		overlay: filepath.Join(os.TempDir(), fmt.Sprintf("drive-pi-vm-%d.qcow2", os.Getpid())),
		scratch: filepath.Join(os.TempDir(), fmt.Sprintf("drive-pi-usb-%d.img", os.Getpid())),
	}

	// The overlay keeps the base image pristine between runs
	if err := qemuImg(ctx, "create", "-f", "qcow2", "-b", config.ImagePath, "-F", "qcow2", vm.overlay); err != nil {
		return nil, fmt.Errorf("create overlay: %w", err)
	}
	if err := qemuImg(ctx, "create", "-f", "raw", vm.scratch, config.DiskSize); err != nil {
		vm.removeImages()
		return nil, fmt.Errorf("create removable disk: %w", err)
	}

	log.Status("Starting VM with image: %s", config.ImagePath)
	vm.cmd = exec.CommandContext(ctx, "qemu-system-x86_64",
		"-m", fmt.Sprintf("%dM", config.Memory),
		"-smp", strconv.Itoa(config.CPUs),
		"-machine", "type=pc,accel=kvm",
		"-cpu", "host",
		"-drive", fmt.Sprintf("file=%s,if=virtio,cache=writeback,discard=ignore,format=qcow2", vm.overlay),
		"-drive", fmt.Sprintf("file=%s,if=virtio,cache=writeback,format=raw", vm.scratch),
		"-boot", "c",
		"-netdev", fmt.Sprintf("user,id=net0,hostfwd=tcp::%d-:22", config.SSHPort),
		"-device", "virtio-net,netdev=net0",
		"-nographic",
	)
	vm.cmd.Stdout = io.Discard
	vm.cmd.Stderr = io.Discard

	if err := vm.cmd.Start(); err != nil {
		vm.removeImages()
		return nil, fmt.Errorf("start qemu: %w", err)
	}

	return vm, nil
}

func qemuImg(ctx context.Context, args ...string) error {
	output, err := exec.CommandContext(ctx, "qemu-img", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, output)
	}
	return nil
}

func imagePath() (string, error) {
	path := os.Getenv("VM_IMAGE")
	if path == "" {
		path = defaultImage
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return "", errors.New("VM image not found. Run 'make test-image' first or set VM_IMAGE env var")
	}

	return filepath.Abs(path)
}

// WaitForSSH polls until the guest accepts an SSH login or the configured
// timeout passes.
func (vm *QEMU) WaitForSSH(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, vm.config.SSHTimeout)
	defer cancel()

	config := &ssh.ClientConfig{
		User:            vm.config.SSHUser,
		Auth:            []ssh.AuthMethod{ssh.Password(vm.config.SSHPass)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	}
	addr := fmt.Sprintf("localhost:%d", vm.config.SSHPort)

	log.Status("Waiting for SSH to become available...")
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		conn, err := ssh.Dial("tcp", addr, config)
		if err == nil {
			vm.mu.Lock()
			vm.sshClient = conn
			vm.mu.Unlock()
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("ssh not ready after %v: %w", vm.config.SSHTimeout, err)
		case <-ticker.C:
		}
	}
}

// Run executes a shell command in the guest and returns its combined output.
func (vm *QEMU) Run(cmd string) (string, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.sshClient == nil {
		return "", errors.New("ssh client not connected")
	}

	session, err := vm.sshClient.NewSession()
	if err != nil {
		return "", fmt.Errorf("new session: %w", err)
	}
	defer func() { _ = session.Close() }()

	output, err := session.CombinedOutput(cmd)
	return string(output), err
}

// RunWithTimeout is Run bounded by timeout. The remote command keeps running
// if the timeout fires.
func (vm *QEMU) RunWithTimeout(ctx context.Context, cmd string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		output string
		err    error
	}

	ch := make(chan result, 1)
	go func() {
		output, err := vm.Run(cmd)
		ch <- result{output, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.output, r.err
	}
}

// CopyFile streams a local file to the guest over SFTP and marks it
// executable.
func (vm *QEMU) CopyFile(localPath, remotePath string) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.sshClient == nil {
		return errors.New("ssh client not connected")
	}

	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer func() { _ = src.Close() }()

	client, err := sftp.NewClient(vm.sshClient)
	if err != nil {
		return fmt.Errorf("create sftp client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if err := client.MkdirAll(filepath.Dir(remotePath)); err != nil {
		return fmt.Errorf("create directory for %s: %w", remotePath, err)
	}

	dst, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("create remote file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := dst.ReadFrom(src); err != nil {
		return fmt.Errorf("copy to %s: %w", remotePath, err)
	}

	if err := client.Chmod(remotePath, 0o755); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}

	return nil
}

// RemovableDisk returns the guest path of the scratch disk. It is the second
// virtio drive, after the root overlay.
func (vm *QEMU) RemovableDisk() string {
	return removableDevice
}

// Stop powers the guest off, kills QEMU and removes the images created for
// this run. It is safe to call more than once.
func (vm *QEMU) Stop() {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.sshClient != nil {
		if session, err := vm.sshClient.NewSession(); err == nil {
			_ = session.Run("sudo shutdown -P now")
			_ = session.Close()
			time.Sleep(2 * time.Second)
		}
		_ = vm.sshClient.Close()
		vm.sshClient = nil
	}

	if vm.cmd != nil && vm.cmd.Process != nil {
		log.Status("Shutting down VM...")
		_ = vm.cmd.Process.Kill()
		_ = vm.cmd.Wait()
		vm.cmd = nil
	}

	vm.removeImages()
}

func (vm *QEMU) removeImages() {
	for _, path := range []*string{&vm.overlay, &vm.scratch} {
		if *path == "" {
			continue
		}
		_ = os.Remove(*path)
		*path = ""
	}
}

// IsRunning reports whether the QEMU process has not exited yet.
func (vm *QEMU) IsRunning() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	return vm.cmd != nil && vm.cmd.Process != nil && vm.cmd.ProcessState == nil
}

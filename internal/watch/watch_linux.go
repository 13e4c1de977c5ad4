//go:build linux

package watch

import (
	"encoding/binary"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

const (
	pollTimeoutMillis = 100
	debounce          = 50 * time.Millisecond
)

// File calls onChange whenever path is closed after writing or renamed into
// place. The parent directory is watched so atomic temp-file renames are
// seen. Bursts of events are coalesced. The returned stop function is safe
// to call more than once.
func File(path string, onChange func()) (func(), error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, err
	}
	if _, err := unix.InotifyAddWatch(fd, filepath.Dir(absolute), unix.IN_CLOSE_WRITE|unix.IN_MOVED_TO); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	stopCh := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		loop(fd, filepath.Base(absolute), onChange, stopCh)
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(stopCh)
			<-done
		})
	}
	return stop, nil
}

func loop(fd int, filename string, onChange func(), stop <-chan struct{}) {
	defer func() { _ = unix.Close(fd) }()
	buffer := make([]byte, 4096)

	for {
		select {
		case <-stop:
			return
		default:
		}

		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, pollTimeoutMillis)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if n == 0 {
			continue
		}

		read, err := unix.Read(fd, buffer)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		if !matches(buffer[:read], filename) {
			continue
		}

		time.Sleep(debounce)
		drain(fd, buffer)
		onChange()
	}
}

// matches reports whether any inotify_event in buffer names filename.
func matches(buffer []byte, filename string) bool {
	offset := 0
	for offset+unix.SizeofInotifyEvent <= len(buffer) {
		nameLength := int(binary.NativeEndian.Uint32(buffer[offset+12 : offset+16]))
		size := unix.SizeofInotifyEvent + nameLength
		if offset+size > len(buffer) {
			break
		}
		if nameLength > 0 && cString(buffer[offset+unix.SizeofInotifyEvent:offset+size]) == filename {
			return true
		}
		offset += size
	}
	return false
}

func cString(data []byte) string {
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}

func drain(fd int, buffer []byte) {
	for {
		if _, err := unix.Read(fd, buffer); err != nil {
			return
		}
	}
}

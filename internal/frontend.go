package internal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/slipgate-emu/slipgate/internal/core"
	coredebug "github.com/slipgate-emu/slipgate/internal/core/debug"
	"github.com/slipgate-emu/slipgate/internal/game"
	"github.com/slipgate-emu/slipgate/internal/packets"
)

// frontend implements the concurrent client connection logic.
//
// Data is read from any connected clients and passed to a backend instance,
// abstracting the lower level connection details away from the Backends.
type frontend struct {
	Address string
	Backend Backend
	Config  *core.Config
	Logger  *logrus.Logger
}

// Start initializes the server backend and opens a TCP socket for the
// specified server. A blocking loop for accepting client connections is spun
// off in its own goroutine and added to the WaitGroup. Context cancellations
// will stop the server.
func (f *frontend) Start(ctx context.Context, wg *sync.WaitGroup) error {
	if err := f.Backend.Init(ctx); err != nil {
		return fmt.Errorf("error initializing %s server: %v", f.Backend.Identifier(), err)
	}

	socket, err := f.createSocket()
	if err != nil {
		return fmt.Errorf("error creating socket on %s: %v", f.Address, err)
	}

	wg.Add(1)
	go f.startBlockingLoop(ctx, socket, wg)

	return nil
}

func (f *frontend) createSocket() (*net.TCPListener, error) {
	hostAddr, err := net.ResolveTCPAddr("tcp", f.Address)
	if err != nil {
		return nil, fmt.Errorf("error resolving address %s", err.Error())
	}

	socket, err := net.ListenTCP("tcp", hostAddr)
	if err != nil {
		return nil, fmt.Errorf("error listening on socket: %s", err.Error())
	}

	return socket, nil
}

// startBlockingLoop implements a connection handling loop that's purely
// responsible for accepting new connections and spinning off goroutines for
// the Backend to handle them.
func (f *frontend) startBlockingLoop(ctx context.Context, socket *net.TCPListener, wg *sync.WaitGroup) {
	defer wg.Done()

	f.Logger.Printf("[%s] waiting for connections on %v", f.Backend.Identifier(), f.Address)

	connections := make(chan *net.TCPConn)
	go func() {
		for {
			connection, err := socket.AcceptTCP()
			if err != nil {
				f.Logger.Warnf("failed to accept connection: %s", err.Error())
				continue
			}

			connections <- connection
		}
	}()

	clientWg := &sync.WaitGroup{}
handleLoop:
	for {
		select {
		case <-ctx.Done():
			break handleLoop
		case connection := <-connections:
			clientWg.Add(1)
			go f.acceptClient(ctx, connection, clientWg)
		}
	}

	f.Logger.Infof("[%v] shutting down (waiting for connections to close)", f.Backend.Identifier())
	clientWg.Wait()
	f.Logger.Infof("[%v] exited", f.Backend.Identifier())
}

// acceptClient takes a connection and initiates a session, sending the
// welcome message before moving into the frame processing loop.
func (f *frontend) acceptClient(ctx context.Context, connection *net.TCPConn, wg *sync.WaitGroup) {
	defer wg.Done()

	s := game.NewSession(f.Backend.Kind(), connection)
	f.Backend.SetUpSession(s)

	f.Logger.Infof("[%s] accepted connection from %s", f.Backend.Identifier(), s.RemoteAddr())

	if err := f.Backend.Handshake(s); err != nil {
		f.Logger.Errorf("Handshake() failed for client %s: %s", s.RemoteAddr(), err)
	}

	f.processFrames(ctx, s)
}

// processFrames starts a blocking loop dedicated to reading data sent from a
// client and only returns once the connection has closed. Messages are
// dispatched synchronously from here, which is what gives each session its
// in-order processing guarantee.
func (f *frontend) processFrames(ctx context.Context, s *game.Session) {
	defer f.closeConnectionAndRecover(f.Backend.Identifier(), s)

	buffer := make([]byte, 2048)
	var err error

	for {
		select {
		case <-ctx.Done():
			// For now just allow the deferred function to close the connection.
			return
		default:
		}

		buffer, err = f.readNextFrame(s, buffer)

		if err == io.EOF {
			break
		} else if err != nil {
			f.Logger.Warn(err.Error())
			break
		}

		size, _ := packets.PeekHeader(buffer)
		if f.Config.Debugging.PacketLoggingEnabled {
			w := bufio.NewWriter(os.Stdout)
			coredebug.DumpMessage(w, "recv", s.RemoteAddr().String(), buffer[:size])
			_ = w.Flush()
		}

		if err = f.Backend.Handle(ctx, s, buffer[:size]); err != nil {
			f.Logger.Warn("error in client communication: " + err.Error())
			return
		}
	}
}

// closeConnectionAndRecover is the failsafe that catches any panics,
// disconnects the client, and notifies the backend regardless of the state
// of the connection.
func (f *frontend) closeConnectionAndRecover(serverName string, s *game.Session) {
	if err := recover(); err != nil {
		f.Logger.Errorf("error in client communication with %s: error=%s, trace: %s",
			s.RemoteAddr(), err, debug.Stack())
	}

	if err := s.Close(); err != nil {
		f.Logger.Warnf("failed to close client connection: %s", err)
	}

	f.Backend.OnDisconnect(s)

	f.Logger.Infof("[%s] disconnected client %s", serverName, s.RemoteAddr())
}

// readNextFrame is a blocking call that only returns once the client has
// sent the next complete frame.
func (f *frontend) readNextFrame(s *game.Session, buffer []byte) ([]byte, error) {
	if err := f.readDataFromClient(s, packets.HeaderSize, buffer); err != nil {
		return buffer, err
	}

	frameSize, _ := packets.PeekHeader(buffer[:packets.HeaderSize])
	if frameSize < packets.HeaderSize {
		return buffer, fmt.Errorf("malformed frame header from %s: size %d", s.RemoteAddr(), frameSize)
	}

	// Grow the receive buffer if the client sends a frame bigger than its
	// current capacity.
	if frameSize > cap(buffer) {
		newBuf := make([]byte, cap(buffer)+frameSize)
		copy(newBuf, buffer)
		buffer = newBuf
	}

	if err := f.readDataFromClient(s, frameSize-packets.HeaderSize, buffer[packets.HeaderSize:]); err != nil {
		return buffer, err
	}

	return buffer, nil
}

func (f *frontend) readDataFromClient(s *game.Session, n int, buffer []byte) error {
	received := 0

	for received < n {
		bytesRead, err := s.Read(buffer[received:n])
		received += bytesRead

		if bytesRead == 0 || err == io.EOF {
			return err
		} else if err != nil {
			return errors.New("socket error (" + s.RemoteAddr().String() + ") " + err.Error())
		}
	}

	return nil
}

// Package debug contains optional introspection utilities for the server.
package debug

import (
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
)

// StartUtilities spins off the services associated with debug mode.
func StartUtilities(logger *logrus.Logger, pprofPort int) {
	startPprofServer(logger, pprofPort)
}

// This function starts the default pprof HTTP server that can be accessed via
// localhost to get runtime information about the server.
// See https://golang.org/pkg/net/http/pprof/
func startPprofServer(logger *logrus.Logger, pprofPort int) {
	listenerAddr := fmt.Sprintf("localhost:%d", pprofPort)
	logger.Infof("starting pprof server on %s", listenerAddr)

	go func() {
		if err := http.ListenAndServe(listenerAddr, nil); err != nil {
			logger.Infof("error starting pprof server: %s", err)
		}
	}()
}

var dumper = &spew.ConfigState{Indent: "  ", DisableMethods: true, DisablePointerAddresses: true}

// DumpMessage writes a human-readable rendering of a decoded message to w.
// Used by the frontends when packet logging is enabled.
func DumpMessage(w io.Writer, direction string, remoteAddr string, msg interface{}) {
	fmt.Fprintf(w, "[%s] %s\n", direction, remoteAddr)
	dumper.Fdump(w, msg)
}

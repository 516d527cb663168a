package textbookrsa

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"

	"github.com/davecgh/go-spew/spew"
)

// Debugging is off unless MYRSA_DEBUG is set, or SetDebug turns it on.
// MYRSA_DEBUG=dump additionally logs whole keys.
var debugLevel int32

const (
	levelOff int32 = iota
	levelDebug
	levelDump
)

type logTopic string

const (
	dInfo    logTopic = "INFO"
	dWarning logTopic = "WARN"
	dDump    logTopic = "DUMP"
)

func init() {
	switch os.Getenv("MYRSA_DEBUG") {
	case "":
	case "dump":
		debugLevel = levelDump
	default:
		debugLevel = levelDebug
	}
}

// SetDebug turns debug logging on or off. With dump set, generated keys are
// logged in full, private components included.
func SetDebug(on, dump bool) {
	level := levelOff
	if on {
		level = levelDebug
		if dump {
			level = levelDump
		}
	}
	atomic.StoreInt32(&debugLevel, level)
}

func IsDebug() bool { return atomic.LoadInt32(&debugLevel) >= levelDebug }
func IsDump() bool { return atomic.LoadInt32(&debugLevel) >= levelDump }

func logf(topic logTopic, header string, format string, a ...interface{}) {
	if !IsDebug() {
		return
	}
	log.SetFlags(log.Lmicroseconds)
	log.Printf("%s [%s] %s", topic, header, fmt.Sprintf(format, a...))
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump renders every component of k, private ones included.
func Dump(k *KeyPair) string {
	return fmt.Sprintf("key %s (%d bits)\n%s", k.ID(), k.Bits(), dumpConfig.Sdump(k.Private()))
}

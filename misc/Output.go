package misc

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	debugEnabled  bool
	debugInitOnce sync.Once
)

// initDebugFlag reads the DEBUG config from the environment once.
func initDebugFlag() {
	debugInitOnce.Do(func() {
		val := strings.TrimSpace(os.Getenv("DEBUG"))
		debugEnabled = val == "true" || val == "1"
	})
}

// ReloadDebugFlag forces re-reading the DEBUG config.
func ReloadDebugFlag() {
	val := strings.TrimSpace(os.Getenv("DEBUG"))
	debugEnabled = val == "true" || val == "1"
}

func Info(mod string, msg string, eventHandler func(string, string, int)) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	m := fmt.Sprintf("[%s][*][%s]: %s", timestamp, mod, msg)
	if eventHandler != nil {
		eventHandler(mod, msg, 1)
		return
	}
	fmt.Println(m)
}

func Success(mod string, msg string, eventHandler func(string, string, int)) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	m := fmt.Sprintf("[%s][+][%s]: %s", timestamp, mod, msg)
	if eventHandler != nil {
		eventHandler(mod, msg, 1)
		return
	}
	fmt.Println(m)
}

func Warn(mod string, msg string, eventHandler func(string, string, int)) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	m := fmt.Sprintf("[%s][!][%s]: %s", timestamp, mod, msg)
	if eventHandler != nil {
		eventHandler(mod, msg, 2)
		return
	}
	fmt.Println(m)
}

func Error(mod string, msg string, eventHandler func(string, string, int)) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	m := fmt.Sprintf("[%s][-][%s]: %s", timestamp, mod, msg)
	if eventHandler != nil {
		eventHandler(mod, msg, 3)
		return
	}
	log.Fatal(m)
}

func Debug(format string, v ...any) {
	initDebugFlag()
	if !debugEnabled {
		return
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	m := fmt.Sprintf("[%s][DEBUG]: %s\n", timestamp, format)
	fmt.Println(fmt.Sprintf(m, v...))
}

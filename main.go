package main

import (
	"log"
	"strings"

	"github.com/kiru56776/AI-math/Web"
	"github.com/kiru56776/AI-math/misc"
)

func init() {
	err := misc.CreateDirIfNotExists(misc.GetDataDir())
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	if missing := misc.CheckRequiredConfig(); len(missing) > 0 {
		log.Fatal("missing required config: " + strings.Join(missing, ", "))
	}
	server, err := Web.NewServer()
	if err != nil {
		log.Fatal(err)
	}
	server.StartWebServer(misc.GetPort())
}

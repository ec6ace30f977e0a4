package main

import (
	"log"
	"os"

	_ "github.com/viant/scy/kms/blowfish"
	"github.com/viant/wsbridge"
)

func main() {
	if err := wsbridge.Run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fulldump/goconfig"

	"github.com/populatedb/populatedb/bootstrap"
	"github.com/populatedb/populatedb/configuration"
)

var VERSION = "dev"

var banner = `
                        _       _       ____________
 _ __   ___  _ __  _  _| | __ _| |_ ___|  _  \ ___ \
| '_ \ / _ \| '_ \| || | |/ _' | __/ -_) |_| | |_/ /
| .__/ \___/| .__/ \_,_|_|\__,_|\__\___|____/|____/
|_|         |_|                version ` + VERSION + `
`

func main() {

	c := configuration.Default()
	goconfig.Read(&c)

	if c.Version {
		fmt.Println("Version:", VERSION)
		return
	}

	fmt.Println(banner)

	if c.ShowConfig {
		e := json.NewEncoder(os.Stdout)
		e.SetIndent("", "    ")
		e.Encode(c)
	}

	bootstrap.VERSION = VERSION

	start, _ := bootstrap.Bootstrap(&c, nil)
	start()
}

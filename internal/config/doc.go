// Package config provides configuration parsing for the pebble command.
//
// The configuration is stored in pebble.json in the working directory.
// A missing file is not an error: every field has a default.
//
// # Configuration File Structure
//
//	{
//	  "inspector": {
//	    "addr": "localhost:7070"
//	  },
//	  "metrics": {
//	    "namespace": "pebble"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "snapshot": {
//	    "driver": "sqlite",
//	    "dsn": "pebble.db",
//	    "key": "default"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Inspector:", cfg.Inspector.Addr)
package config

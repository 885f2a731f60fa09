// Package config loads keepblock.yaml.
//
// Values are layered with viper, lowest precedence first: built-in
// defaults, the configuration file, KEEPBLOCK_* environment variables
// (dots become underscores, so KEEPBLOCK_SERVER_ADDR sets server.addr),
// and command-line flags.
//
// # Configuration File Structure
//
//	language: python
//	output: ui
//	forms:
//	  - forms/*.yaml
//	create_dirs: false
//	workers: 4
//	backup:
//	  enabled: true
//	  dir: .keepblock/backups
//	store:
//	  kind: fs            # or s3
//	  bucket: ""
//	  prefix: ""
//	  region: ""
//	  endpoint: ""
//	metrics:
//	  textfile: ""
//	server:
//	  addr: 127.0.0.1:7457
//	watch:
//	  interval: 250ms
//
// # Usage
//
//	cfg, err := config.Load(cmd, "")
//	if err != nil {
//	    return err
//	}
//	fmt.Println("Output:", cfg.OutputPath())
package config

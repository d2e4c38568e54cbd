package config

import (
	"fmt"
	"os"
)

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(clientTemplate), 0o600)
}

const clientTemplate = `client_id = "assetlink"

[server]
host = "192.168.1.10"
port = 4040
# SNI override; peer certificates are accepted unconditionally.
server_name = ""

[timeouts]
connect = "5s"
# "0s" lets each exchange await the peer indefinitely.
exchange = "0s"

[retry]
max_connect_attempts = 1
initial_delay = "250ms"
multiplier = 2.0
max_delay = "5s"
jitter = true

[discovery]
# Server discovery is handled by an external collaborator; these
# values are passed through and unused by the protocol client.
broadcast_port = 4041
broadcast_interval = "10s"

[admin]
enabled = false
addr = "127.0.0.1:8088"
cors_origins = ["http://localhost:3000"]
`

// feedtest sends a handful of legacy overlay payloads to a running HUD, for
// eyeballing the pipeline end to end.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"time"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:5010", "HUD feed address")
	ttl := flag.Float64("ttl", 10, "payload ttl in seconds")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatalf("dial %s: %v", *addr, err)
	}
	defer conn.Close()

	payloads := []string{
		fmt.Sprintf(`{"id":"grp-title","plugin":"feedtest","text":"overlay feed test","color":"yellow","x":40,"y":40,"ttl":%g,"size":"large"}`, *ttl),
		fmt.Sprintf(`{"id":"grp-box","plugin":"feedtest","shape":"rect","x":30,"y":30,"w":400,"h":120,"fill":"#00000080","color":"#ffff00","ttl":%g}`, *ttl),
		fmt.Sprintf(`{"id":"grp-status","plugin":"feedtest","text":"line one\nline two","color":"#80ff80","x":40,"y":80,"ttl":%g}`, *ttl),
		fmt.Sprintf(`{"id":"route","plugin":"feedtest","shape":"vect","color":"green","ttl":%g,"vector":[{"x":100,"y":400},{"x":300,"y":500,"marker":"cross","text":"wp1","color":"yellow"},{"x":600,"y":450,"marker":"circle","text":"wp2"}]}`, *ttl),
	}

	for _, p := range payloads {
		if _, err := fmt.Fprintln(conn, p); err != nil {
			log.Fatalf("send: %v", err)
		}
		log.Printf("sent: %s", p)
		time.Sleep(100 * time.Millisecond)
	}
}

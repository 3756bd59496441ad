package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/vellumlang/vellum/internal/liveserver"
	"github.com/vellumlang/vellum/internal/patternjson"
	"github.com/vellumlang/vellum/pkg/pattern"
)

const indexPage = `<!DOCTYPE html>
<html><body>
<pre id="out">connecting...</pre>
<script>
  const ws = new WebSocket("ws://" + location.host + "/ws");
  ws.onmessage = (ev) => {
    document.getElementById("out").textContent = ev.data;
  };
</script>
</body></html>`

var serveCommand = &cli.Command{
	Name:      "serve",
	Usage:     "watch a pattern program and live-reload its pattern tree in a browser",
	ArgsUsage: "<source.pat>",
	Flags: append(sharedFlags(),
		&cli.StringFlag{Name: "addr", Value: ":8080", Usage: "address to listen on"},
	),
	Action: func(c *cli.Context) error {
		src := c.Args().First()
		if src == "" {
			return fmt.Errorf("usage: vellum serve <source.pat>")
		}
		dataPath := c.String("data")
		includes := c.StringSlice("include")
		cc := openCache(c)

		pipeline := func(path string) (liveserver.Result, error) {
			res := runPipeline(path, dataPath, includes, cc)
			if len(res.Errors) > 0 {
				return liveserver.Result{OK: false, Error: res.Errors[0]}, nil
			}
			x := patternjson.Exporter{Data: res.Data, Stack: res.Stack, DefaultEndian: pattern.EndianLittle}
			raw, err := x.Export(res.Top)
			if err != nil {
				return liveserver.Result{}, err
			}
			return liveserver.Result{OK: true, Patterns: json.RawMessage(raw)}, nil
		}

		srv := liveserver.New(src, includes, pipeline)
		stop := make(chan struct{})
		go func() {
			if err := srv.Watch(stop); err != nil {
				fmt.Println("watch error:", err)
			}
		}()

		http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(indexPage))
		})
		http.HandleFunc("/ws", srv.ServeHTTP)

		addr := c.String("addr")
		fmt.Println("serving on", addr)
		return http.ListenAndServe(addr, nil)
	},
}

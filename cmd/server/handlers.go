package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/mr-karan/slotdb"
	"github.com/tidwall/redcon"
)

// newAdminServer returns a RESP server exposing read-only views of the store
// and a few maintenance commands. It never speaks the record protocol.
func (app *App) newAdminServer(addr string) *redcon.Server {
	mux := redcon.NewServeMux()
	mux.HandleFunc("ping", app.ping)
	mux.HandleFunc("quit", app.quit)
	mux.HandleFunc("count", app.count)
	mux.HandleFunc("get", app.get)
	mux.HandleFunc("sync", app.sync)

	return redcon.NewServer(addr,
		mux.ServeRESP,
		func(conn redcon.Conn) bool {
			app.lo.Debug("admin connection accepted", "remote", conn.RemoteAddr())
			return true
		},
		func(conn redcon.Conn, err error) {
			if err != nil {
				app.lo.Debug("admin connection closed", "remote", conn.RemoteAddr(), "error", err)
			}
		},
	)
}

func (app *App) ping(conn redcon.Conn, cmd redcon.Command) {
	conn.WriteString("PONG")
}

func (app *App) quit(conn redcon.Conn, cmd redcon.Command) {
	conn.WriteString("OK")
	conn.Close()
}

func (app *App) count(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) != 1 {
		conn.WriteError("ERR wrong number of arguments for '" + string(cmd.Args[0]) + "' command")
		return
	}
	conn.WriteInt(int(app.store.EntryCount()))
}

func (app *App) get(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) != 2 {
		conn.WriteError("ERR wrong number of arguments for '" + string(cmd.Args[0]) + "' command")
		return
	}
	id, err := strconv.ParseUint(string(cmd.Args[1]), 10, 16)
	if err != nil {
		conn.WriteError("ERR invalid id " + string(cmd.Args[1]))
		return
	}

	rec, err := app.store.Read(uint16(id))
	if err != nil {
		if errors.Is(err, slotdb.RequestDenied) {
			conn.WriteNull()
			return
		}
		conn.WriteError(fmt.Sprintf("ERR: %s", err))
		return
	}

	conn.WriteArray(4)
	conn.WriteInt(int(rec.ID))
	conn.WriteBulkString(rec.FirstName)
	conn.WriteBulkString(rec.LastName)
	conn.WriteBulkString(rec.Date.String())
}

func (app *App) sync(conn redcon.Conn, cmd redcon.Command) {
	if err := app.store.Sync(); err != nil {
		conn.WriteError(fmt.Sprintf("ERR: %s", err))
		return
	}
	conn.WriteString("OK")
}

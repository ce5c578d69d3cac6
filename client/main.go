package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	MsgTypeIdentify     = 2
	MsgTypeCreateGame   = 101
	MsgTypeListGames    = 102
	MsgTypeGetGameState = 103
	MsgTypeJoinGame     = 104
	MsgTypePlayCard     = 105
	MsgTypeResign       = 106
	MsgTypeNextGame     = 107
	MsgTypeCancelGame   = 108
	MsgTypePendingGames = 109
)

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, data []byte) error {
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func sendJSON(c *websocket.Conn, msgID uint16, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return send(c, msgID, data)
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	userID := flag.Int64("user", 1, "user id to identify as")
	name := flag.String("name", "tester", "display name")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]
			log.Printf("<- RECV (ID: %d): %s", msgID, string(data))
		}
	}()

	log.Printf("Identifying as user %d (%s)...", *userID, *name)
	if err := sendJSON(c, MsgTypeIdentify, map[string]interface{}{"user_id": *userID, "name": *name}); err != nil {
		log.Println("Write error:", err)
		return
	}

	log.Println("Commands: create [3|9] [match <stake>] | list | join <id> | state <id> | play <id> <card> | resign <id> | next <id> | cancel <id> | pending")

	// Write loop
	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(text)
			if len(fields) == 0 {
				continue
			}

			var err error
			switch fields[0] {
			case "create":
				req := map[string]interface{}{"variant": 9, "type": "standalone"}
				if len(fields) > 1 {
					req["variant"], _ = strconv.Atoi(fields[1])
				}
				if len(fields) > 3 && fields[2] == "match" {
					req["type"] = "match"
					req["stake"], _ = strconv.ParseInt(fields[3], 10, 64)
				}
				err = sendJSON(c, MsgTypeCreateGame, req)
			case "list":
				err = send(c, MsgTypeListGames, []byte{})
			case "pending":
				err = send(c, MsgTypePendingGames, []byte{})
			case "join", "state", "resign", "next", "cancel":
				if len(fields) < 2 {
					log.Println("Need a game id")
					continue
				}
				id, _ := strconv.ParseInt(fields[1], 10, 64)
				msgID := map[string]uint16{
					"join": MsgTypeJoinGame, "state": MsgTypeGetGameState,
					"resign": MsgTypeResign, "next": MsgTypeNextGame,
					"cancel": MsgTypeCancelGame,
				}[fields[0]]
				err = sendJSON(c, msgID, map[string]int64{"game_id": id})
			case "play":
				if len(fields) < 3 {
					log.Println("Usage: play <game_id> <card_id>")
					continue
				}
				gameID, _ := strconv.ParseInt(fields[1], 10, 64)
				cardID, _ := strconv.Atoi(fields[2])
				err = sendJSON(c, MsgTypePlayCard, map[string]interface{}{"game_id": gameID, "card_id": cardID})
			default:
				log.Printf("Unknown command %q", fields[0])
				continue
			}
			if err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}

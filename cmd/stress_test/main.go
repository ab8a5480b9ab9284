package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Fires a burst of concurrent hold-then-complete checkouts at a running
// server and reports how many succeeded. With N units of capacity exactly N
// single-ticket checkouts should win; anything more means an oversell.
func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	ticketTypeID := flag.String("ticket-type", "", "ticket type to hammer")
	requests := flag.Int("requests", 50, "number of concurrent checkouts")
	flag.Parse()

	if *ticketTypeID == "" {
		log.Fatal("missing -ticket-type")
	}

	var held, completed, rejected, failed atomic.Int32
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < *requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			sessionID := uuid.NewString()
			holdID, ok := createHold(*baseURL, *ticketTypeID, sessionID)
			if holdID == "" {
				if ok {
					rejected.Add(1)
				} else {
					failed.Add(1)
				}
				return
			}
			held.Add(1)

			if completePurchase(*baseURL, holdID, uuid.NewString()) {
				completed.Add(1)
			} else {
				failed.Add(1)
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	fmt.Printf("requests:  %d\n", *requests)
	fmt.Printf("held:      %d\n", held.Load())
	fmt.Printf("completed: %d\n", completed.Load())
	fmt.Printf("rejected:  %d\n", rejected.Load())
	fmt.Printf("failed:    %d\n", failed.Load())
	fmt.Printf("elapsed:   %s\n", elapsed)
}

// createHold returns the new hold ID, or "" with ok=true when the server
// cleanly rejected the hold for insufficient inventory.
func createHold(baseURL, ticketTypeID, sessionID string) (string, bool) {
	body, _ := json.Marshal(map[string]interface{}{
		"ticket_type_id": ticketTypeID,
		"quantity":       1,
		"channel":        "online",
		"session_id":     sessionID,
	})

	resp, err := http.Post(baseURL+"/api/holds", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return "", true
	}
	if resp.StatusCode != http.StatusCreated {
		return "", false
	}

	var hold struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&hold); err != nil {
		return "", false
	}
	return hold.ID, true
}

func completePurchase(baseURL, holdID, orderID string) bool {
	body, _ := json.Marshal(map[string]string{
		"hold_id":  holdID,
		"order_id": orderID,
	})

	resp, err := http.Post(baseURL+"/api/holds/complete", "application/json", bytes.NewReader(body))
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// openai-stub is a tiny OpenAI-compatible endpoint for local runs and
// tests: it answers every chat completion by echoing the question and
// the first line of the retrieved material, so the full ask pipeline
// can be exercised without a real model.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func main() {
	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		user := ""
		for _, m := range req.Messages {
			if m.Role == "user" {
				user = m.Content
			}
		}
		question := user
		material := ""
		if _, rest, ok := strings.Cut(user, "Question : "); ok {
			if q, m, ok2 := strings.Cut(rest, "\n\nContenu récupéré :\n"); ok2 {
				question = strings.TrimSpace(q)
				for _, line := range strings.Split(m, "\n") {
					if s := strings.TrimSpace(line); s != "" {
						material = s
						break
					}
				}
			}
		}

		content := fmt.Sprintf("Réponse de test à « %s »", strings.TrimSpace(question))
		if material != "" {
			content += "\n" + material
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	})

	log.Printf("openai-stub listening on %s (model=%s)", addr, model)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

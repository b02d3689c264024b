package main

import (
	"fmt"
	"net/http"
)

// Upstream de mentira para validar o gateway na mão: sobe uma "loja" que
// aceita qualquer coisa e loga o que chegou.
func main() {
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "loja-fake: %s %s\n", r.Method, r.URL.Path)
		fmt.Printf("Log: request em %s %s\n", r.Method, r.URL.Path)
	})
	fmt.Println("Loja fake rodando em http://localhost:8081")
	err := http.ListenAndServe(":8081", nil)
	if err != nil {
		fmt.Printf("Erro ao subir o servidor: %s\n", err)
	}
}

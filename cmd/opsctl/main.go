package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// opsctl é o utilitário de operação do engine: dispara ciclos de ingestão e
// liquidações manuais e consulta o estado pela API HTTP.
const usage = `uso: opsctl [-addr host:porta] <comando> [args]

comandos:
  ingest                dispara um ciclo de ingestão fora do agendamento
  settle <gameId>       dispara a liquidação de um jogo encerrado
  game <gameId>         mostra um jogo do catálogo
  games [status]        lista jogos (ativos, ou filtrados por status)
  balance <userId>      mostra saldo e contadores do usuário
  wagers <userId>       lista as apostas do usuário
`

func main() {
	addr := flag.String("addr", "localhost:8090", "endereço da API do engine")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	base := "http://" + *addr
	client := &http.Client{Timeout: 30 * time.Second}

	var (
		method = http.MethodGet
		path   string
	)
	switch args[0] {
	case "ingest":
		method, path = http.MethodPost, "/admin/ingest"
	case "settle":
		method, path = http.MethodPost, "/admin/settle/"+arg(args, 1, "gameId")
	case "game":
		path = "/games/" + arg(args, 1, "gameId")
	case "games":
		path = "/games"
		if len(args) > 1 {
			path += "?status=" + args[1]
		}
	case "balance":
		path = "/users/" + arg(args, 1, "userId")
	case "wagers":
		path = "/users/" + arg(args, 1, "userId") + "/wagers"
	default:
		flag.Usage()
		os.Exit(2)
	}

	req, err := http.NewRequest(method, base+path, nil)
	if err != nil {
		fail(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		fail(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Println(strings.TrimSpace(string(body)))
	if resp.StatusCode >= 300 {
		os.Exit(1)
	}
}

func arg(args []string, i int, name string) string {
	if len(args) <= i || args[i] == "" {
		fmt.Fprintf(os.Stderr, "%s obrigatório\n\n%s", name, usage)
		os.Exit(2)
	}
	return args[i]
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "erro:", err)
	os.Exit(1)
}

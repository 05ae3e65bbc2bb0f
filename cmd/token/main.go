// token emite un JWT de desarrollo con la identidad indicada, firmado con JWT_SECRET.
//
// Uso: go run ./cmd/token -user u-1 -email ana@example.com -sector Limpieza -role solicitante
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/Suministros-api/pkg/config"
	"github.com/jhoicas/Suministros-api/pkg/jwt"
)

func main() {
	var id jwt.Identity
	flag.StringVar(&id.UserID, "user", "", "id del usuario (obligatorio)")
	flag.StringVar(&id.Email, "email", "", "correo para las notificaciones del pedido")
	flag.StringVar(&id.Sector, "sector", "", "sector del solicitante")
	flag.StringVar(&id.Role, "role", "solicitante", "admin | compras | solicitante")
	minutes := flag.Int("minutes", 0, "vigencia en minutos (0 = JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	exp := cfg.JWT.Expiration
	if *minutes > 0 {
		exp = *minutes
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, id, cfg.JWT.Issuer, exp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}

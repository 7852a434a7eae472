// token emite un JWT firmado con JWT_SECRET para un operador de bodega.
// La API no guarda usuarios; el proveedor de identidad o este comando entregan los tokens.
//
// Uso: go run ./cmd/token -actor jperez -role bodeguero [-minutes 480]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/onu-almacen-api/pkg/config"
	"github.com/jhoicas/onu-almacen-api/pkg/jwt"
)

func main() {
	actor := flag.String("actor", "", "identificador del operador")
	role := flag.String("role", "", "rol: admin, bodeguero o tecnico")
	minutes := flag.Int("minutes", 0, "vigencia en minutos (por defecto JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	token, err := issue(cfg.JWT, *actor, *role, *minutes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Emitir token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

var roles = map[string]bool{"admin": true, "bodeguero": true, "tecnico": true}

func issue(cfg config.JWTConfig, actor, role string, minutes int) (string, error) {
	if actor == "" {
		return "", fmt.Errorf("actor requerido")
	}
	if !roles[role] {
		return "", fmt.Errorf("rol inválido %q", role)
	}
	if minutes <= 0 {
		minutes = cfg.Expiration
	}
	return jwt.Generate(cfg.Secret, actor, role, cfg.Issuer, minutes)
}

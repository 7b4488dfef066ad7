package board

import (
	"net/http"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// credentials presented in the websocket handshake
type ClientAuth struct {
	ByJwt string
}

func (self *ClientAuth) Header() http.Header {
	header := http.Header{}
	if self != nil && self.ByJwt != "" {
		header.Set("Authorization", "Bearer "+self.ByJwt)
	}
	return header
}

type ByJwt struct {
	Subject    string
	ClientName string
}

// the producer verifies the token. the client only reads claims for diagnostics.
func ParseByJwtUnverified(jwt string) (*ByJwt, error) {
	parser := gojwt.NewParser()
	token, _, err := parser.ParseUnverified(jwt, gojwt.MapClaims{})
	if err != nil {
		return nil, err
	}

	claims := token.Claims.(gojwt.MapClaims)

	byJwt := &ByJwt{}

	if subject, err := claims.GetSubject(); err == nil {
		byJwt.Subject = subject
	}
	if clientName, ok := claims["client_name"]; ok {
		if v, ok := clientName.(string); ok {
			byJwt.ClientName = v
		}
	}

	return byJwt, nil
}

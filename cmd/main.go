// cmd/main.go
package main

import (
	"fruit-api/app"
)

// @title           Fruit API
// @version         1.0
// @description     User accounts with email based password reset.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}

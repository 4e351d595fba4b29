package main

import (
	"fmt"
	"os"
)

// @title			Portal de adopción de mascotas API
// @version		1.0
// @description	Búsqueda de mascotas, solicitudes de adopción y moderación de publicaciones.
// @BasePath		/
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

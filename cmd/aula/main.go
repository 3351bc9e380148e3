package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"aulavideo/internal/api"
	"aulavideo/internal/config"
	"aulavideo/internal/models"
	"aulavideo/internal/session"
	"aulavideo/internal/storage"
	"aulavideo/internal/store"
	"aulavideo/internal/view"
)

func main() {
	log.Println("🚀 Starting AulaVideo client...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Open Durable Client State ────
	fileStore, err := storage.NewFileStore(cfg.StateDir)
	if err != nil {
		log.Fatalf("✗ State dir unavailable: %v", err)
	}
	defer fileStore.Close()
	log.Printf("✓ Client state at %s", cfg.StateDir)

	// ──── Step 3: Initialize API Client and Session ────
	client := api.New(cfg.APIBaseURL, time.Duration(cfg.RequestTimeoutSeconds)*time.Second)
	sess := session.New(fileStore, client.Auth)
	defer sess.Close()
	client.SetTokenSource(sess)
	log.Println("✓ API client initialized")

	// ──── Step 4: Wire Stores and Navigation ────
	cursos := store.NewCursosStore(client)
	admin := store.NewAdminStore(client)

	router := view.NewRouter()
	view.ConfigurarGates(router, sess)

	router.OnEnter(view.Cursos, func(ctx context.Context) {
		cursos.CargarCursosPublicos(ctx)
		cursos.CargarCategorias(ctx)
		cursos.CargarResumenes(ctx)
	})
	router.OnEnter(view.MisCursos, cursos.CargarMisCursos)
	router.OnEnter(view.AdminDashboard, admin.CargarEstadisticas)
	router.OnEnter(view.AdminUsuarios, admin.CargarUsuarios)
	router.OnEnter(view.AdminCursos, admin.CargarCursos)
	router.OnEnter(view.AdminCategorias, admin.CargarCategorias)
	router.OnEnter(view.AdminCalificaciones, admin.CargarCalificaciones)
	router.OnEnter(view.AdminVisualizaciones, func(ctx context.Context) {
		admin.CargarVisualizaciones(ctx)
		admin.CargarEstadisticasVisualizaciones(ctx)
	})

	// A 401 anywhere means the session is gone; land on login.
	client.OnUnauthorized(func() {
		sess.Logout()
		router.ForceLogin()
	})

	log.Println("✓ AulaVideo ready")
	repl(router, sess, cursos, admin)
}

func repl(router *view.Router, sess *session.Manager, cursos *store.CursosStore, admin *store.AdminStore) {
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Comandos: login, registro, logout, cursos, buscar, abrir, mis, publicar, calificar, nav, quien, salir")
	for {
		fmt.Printf("[%s] > ", router.Current())
		if !scanner.Scan() {
			return
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "salir", "exit":
			return

		case "quien":
			if u := sess.Usuario(); u != nil {
				fmt.Printf("%s %s <%s> (%s)\n", u.Nombre, u.Apellido, u.Email, u.Rol)
			} else {
				fmt.Println("Sin sesión")
			}

		case "login":
			if len(args) != 3 {
				fmt.Println("uso: login <email> <password>")
				continue
			}
			if err := sess.Login(ctx, models.Credenciales{Email: args[1], Password: args[2]}); err != nil {
				fmt.Println(api.Message(err, "Error al iniciar sesión"))
				continue
			}
			fmt.Printf("Bienvenido, %s\n", sess.Usuario().Nombre)

		case "registro":
			if len(args) != 5 {
				fmt.Println("uso: registro <nombre> <apellido> <email> <password>")
				continue
			}
			reg := models.Registro{Nombre: args[1], Apellido: args[2], Email: args[3], Password: args[4]}
			if err := sess.Register(ctx, reg); err != nil {
				fmt.Println(api.Message(err, "Error al registrarse"))
				continue
			}
			fmt.Println("Cuenta creada")

		case "logout":
			sess.Logout()
			router.ForceLogin()

		case "cursos":
			navegar(ctx, router, view.Cursos)
			imprimirCursos(cursos)

		case "buscar":
			cursos.BuscarCursos(ctx, strings.Join(args[1:], " "))
			imprimirCursos(cursos)

		case "abrir":
			id, ok := parseID(args, "uso: abrir <id>")
			if !ok {
				continue
			}
			cursos.VerDetalleCurso(ctx, id)
			if err := cursos.Cursos.Error(); err != "" {
				fmt.Println(err)
				continue
			}
			navegar(ctx, router, view.CursoDetalle)
			detalle := cursos.Cursos.Seleccionado()
			fmt.Printf("%s — %s\n", detalle.Titulo, detalle.Descripcion)
			for _, v := range cursos.Videos() {
				fmt.Printf("  %d. %s\n", v.Orden, v.Titulo)
			}

		case "mis":
			navegar(ctx, router, view.MisCursos)
			imprimirCursos(cursos)

		case "publicar":
			id, ok := parseID(args, "uso: publicar <id>")
			if !ok {
				continue
			}
			reportar(cursos.PublicarCurso(ctx, id), "Curso publicado")

		case "calificar":
			if len(args) != 3 {
				fmt.Println("uso: calificar <id> <1-5>")
				continue
			}
			id, err1 := strconv.ParseUint(args[1], 10, 32)
			puntos, err2 := strconv.Atoi(args[2])
			if err1 != nil || err2 != nil {
				fmt.Println("uso: calificar <id> <1-5>")
				continue
			}
			reportar(cursos.Calificar(ctx, uint(id), puntos), "Calificación guardada")

		case "nav":
			if len(args) != 2 {
				fmt.Println("uso: nav <vista>")
				continue
			}
			navegar(ctx, router, view.View(args[1]))
			if strings.HasPrefix(args[1], "admin-") {
				imprimirAdmin(router.Current(), admin)
			}

		default:
			fmt.Printf("Comando desconocido: %s\n", args[0])
		}
	}
}

func navegar(ctx context.Context, router *view.Router, v view.View) {
	if err := router.Navigate(ctx, v); err != nil {
		fmt.Println(err)
	}
}

func parseID(args []string, uso string) (uint, bool) {
	if len(args) != 2 {
		fmt.Println(uso)
		return 0, false
	}
	id, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		fmt.Println(uso)
		return 0, false
	}
	return uint(id), true
}

func reportar(res store.Result, exito string) {
	if res.Success {
		fmt.Println(exito)
		return
	}
	fmt.Println(res.Error)
}

func imprimirCursos(cursos *store.CursosStore) {
	if err := cursos.Cursos.Error(); err != "" {
		fmt.Println(err)
		return
	}
	resumenes := cursos.Resumenes()
	for _, c := range cursos.Cursos.Items() {
		linea := fmt.Sprintf("  #%d %s", c.ID, c.Titulo)
		if !c.Publicado {
			linea += " [borrador]"
		}
		if r, ok := resumenes[c.ID]; ok {
			linea += fmt.Sprintf(" — %.1f★ (%d)", r.Promedio, r.Total)
		}
		fmt.Println(linea)
	}
}

func imprimirAdmin(v view.View, admin *store.AdminStore) {
	switch v {
	case view.AdminDashboard:
		if s := admin.Estadisticas(); s != nil {
			fmt.Printf("Usuarios: %d  Cursos: %d (%d publicados)  Videos: %d  Visualizaciones: %d\n",
				s.TotalUsuarios, s.TotalCursos, s.CursosPublicados, s.TotalVideos, s.TotalVisualizaciones)
		}
	case view.AdminUsuarios:
		for _, u := range admin.UsuariosFiltrados() {
			estado := "activo"
			if !u.Activo {
				estado = "inactivo"
			}
			fmt.Printf("  #%d %s %s <%s> %s %s\n", u.ID, u.Nombre, u.Apellido, u.Email, u.Rol, estado)
		}
	case view.AdminCursos:
		for _, c := range admin.Cursos.Items() {
			fmt.Printf("  #%d %s publicado=%t\n", c.ID, c.Titulo, c.Publicado)
		}
	case view.AdminCategorias:
		for _, c := range admin.Categorias.Items() {
			fmt.Printf("  #%d %s\n", c.ID, c.Nombre)
		}
	case view.AdminCalificaciones:
		for _, c := range admin.Calificaciones.Items() {
			fmt.Printf("  #%d curso=%d usuario=%d %d★\n", c.ID, c.CursoID, c.UsuarioID, c.Puntuacion)
		}
	case view.AdminVisualizaciones:
		for _, v := range admin.Visualizaciones.Items() {
			fmt.Printf("  #%d video=%d usuario=%d %s\n", v.ID, v.VideoID, v.UsuarioID, v.Fecha.Format("2006-01-02"))
		}
	}
}

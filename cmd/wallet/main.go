/**
 * Copyright 2025-present Kiwillet Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"kiwillet/internal/cards"
	"kiwillet/internal/catalog"
	"kiwillet/internal/common"
	"kiwillet/internal/config"
	"kiwillet/internal/ledger"
	"kiwillet/internal/models"
	"kiwillet/internal/users"
	"kiwillet/internal/wallet"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	in := bufio.NewReader(os.Stdin)
	runStartMenu(in, services)
}

func prompt(in *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func pause(in *bufio.Reader) {
	prompt(in, "Presione ENTER para continuar...")
}

func runStartMenu(in *bufio.Reader, services *common.Services) {
	for {
		common.PrintHeader("Bienvenido a Kiwillet", common.DefaultWidth)
		fmt.Println("1. Crear usuario")
		fmt.Println("2. Iniciar sesión")
		fmt.Println("3. Salir")

		switch prompt(in, "Seleccione una opción: ") {
		case "1":
			createUser(in, services)
		case "2":
			login(in, services)
		case "3":
			fmt.Println("Gracias por utilizar Kiwillet.")
			return
		default:
			fmt.Println("Opción inválida.")
		}
	}
}

func createUser(in *bufio.Reader, services *common.Services) {
	username := prompt(in, "Ingrese nombre de usuario: ")
	password := prompt(in, "Ingrese contraseña: ")
	if username == "" || password == "" {
		fmt.Println("Los campos no pueden quedar vacíos.")
		return
	}

	if _, err := services.Users.Create(username, password); err != nil {
		if errors.Is(err, users.ErrUserExists) {
			fmt.Println("El usuario ya existe.")
		} else {
			fmt.Println("No se pudo crear el usuario.")
			zap.L().Error("Failed to create user", zap.String("user", username), zap.Error(err))
		}
		return
	}
	fmt.Println("Usuario creado. Ya puede iniciar sesión.")
}

func login(in *bufio.Reader, services *common.Services) {
	username := prompt(in, "Usuario: ")
	password := prompt(in, "Contraseña: ")

	user, err := services.Users.Authenticate(username, password)
	if err != nil {
		fmt.Println("Credenciales inválidas.")
		return
	}

	session, err := wallet.Start(user, wallet.Deps{
		Ledger:  services.Ledger,
		Cards:   services.Cards,
		Users:   services.Users,
		Reports: services.Reports,
		Audit:   services.Audit,
	})
	if err != nil {
		fmt.Println("No se pudo iniciar la sesión.")
		zap.L().Error("Failed to start session", zap.String("user", username), zap.Error(err))
		return
	}
	defer session.Close()

	runMainMenu(in, session, services)
}

func runMainMenu(in *bufio.Reader, session *wallet.Session, services *common.Services) {
	for {
		common.PrintHeader("KIWILLET", common.DefaultWidth)
		fmt.Printf("Usuario: %s | Saldo: $%s\n", session.User.Username, session.Balance().StringFixed(2))
		fmt.Println("1. Gestionar tarjetas")
		fmt.Println("2. Pagar servicios")
		fmt.Println("3. Modificar cuenta")
		fmt.Println("4. Ingresar dinero")
		fmt.Println("5. Ver reportes")
		fmt.Println("6. Salir")

		switch prompt(in, "Seleccione una opción: ") {
		case "1":
			runCardsMenu(in, session)
		case "2":
			payService(in, session, services.Catalog)
		case "3":
			changePassword(in, session)
		case "4":
			deposit(in, session)
		case "5":
			runReportsMenu(in, session)
		case "6":
			fmt.Println("Hasta luego!")
			return
		default:
			fmt.Println("Opción inválida.")
		}
	}
}

func showCards(session *wallet.Session) {
	if len(session.Cards) == 0 {
		fmt.Println("No hay tarjetas registradas.")
		return
	}
	fmt.Println("Tarjetas registradas:")
	for i, card := range session.Cards {
		fmt.Printf("%sID: %s | Tipo: %s | Entidad: %s | Número: %s | Vencimiento: %s\n",
			common.BoxPrefix(i == len(session.Cards)-1),
			card.Id, card.Kind, card.Issuer, cards.Mask(card.Number), card.Expiry)
	}
}

func runCardsMenu(in *bufio.Reader, session *wallet.Session) {
	for {
		fmt.Println("\n-- Tarjetas --")
		fmt.Println("1. Listar tarjetas")
		fmt.Println("2. Agregar tarjeta")
		fmt.Println("3. Eliminar tarjeta")
		fmt.Println("4. Volver")

		switch prompt(in, "Seleccione una opción: ") {
		case "1":
			showCards(session)
			pause(in)
		case "2":
			card := models.Card{
				Id:     prompt(in, "Ingrese ID de la tarjeta: "),
				Kind:   prompt(in, "Tipo (crédito/débito): "),
				Issuer: prompt(in, "Entidad emisora: "),
				Number: prompt(in, "Número: "),
				Expiry: prompt(in, "Vencimiento (MM/AA): "),
			}
			if err := session.AddCard(card); err != nil {
				if errors.Is(err, cards.ErrDuplicateCard) {
					fmt.Println("Ya existe una tarjeta con ese ID.")
				} else {
					fmt.Println("No se pudo agregar la tarjeta.")
					zap.L().Error("Failed to add card", zap.Error(err))
				}
			} else {
				fmt.Println("Tarjeta agregada correctamente.")
			}
			pause(in)
		case "3":
			id := prompt(in, "Ingrese el ID de la tarjeta a eliminar: ")
			if err := session.RemoveCard(id); err != nil {
				fmt.Println("No se encontró la tarjeta indicada.")
			} else {
				fmt.Println("Tarjeta eliminada.")
			}
			pause(in)
		case "4":
			return
		default:
			fmt.Println("Opción inválida.")
		}
	}
}

func payService(in *bufio.Reader, session *wallet.Session, services []models.Service) {
	if len(services) == 0 {
		fmt.Println("No hay servicios cargados.")
		return
	}
	if len(session.Cards) == 0 {
		fmt.Println("Debe registrar al menos una tarjeta antes de operar.")
		pause(in)
		return
	}

	showCards(session)
	cardId := prompt(in, "Seleccione el ID de la tarjeta a utilizar: ")
	if _, ok := cards.Find(session.Cards, cardId); !ok {
		fmt.Println("Tarjeta no encontrada.")
		pause(in)
		return
	}

	fmt.Println("Servicios disponibles:")
	for _, service := range services {
		fmt.Printf("ID: %s | %s - %s | Monto sugerido: $%s\n",
			service.Id, service.Name, service.Category, service.SuggestedAmount.StringFixed(2))
	}
	serviceId := prompt(in, "Ingrese ID del servicio a pagar: ")
	service, ok := catalog.Find(services, serviceId)
	if !ok {
		fmt.Println("Servicio no encontrado.")
		pause(in)
		return
	}

	amount := service.SuggestedAmount
	if raw := prompt(in, "Ingrese monto a pagar (ENTER para monto sugerido): "); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			fmt.Println("Monto inválido.")
			pause(in)
			return
		}
		amount = parsed
	}

	if err := session.PayService(service, amount); err != nil {
		switch {
		case errors.Is(err, wallet.ErrInsufficientFunds):
			fmt.Println("Saldo insuficiente, realice una recarga.")
		case errors.Is(err, ledger.ErrInvalidAmount):
			fmt.Println("Monto inválido.")
		default:
			fmt.Println("No se pudo registrar el pago.")
			zap.L().Error("Failed to pay service", zap.Error(err))
		}
		pause(in)
		return
	}

	fmt.Printf("Pago registrado. Saldo restante: $%s\n", session.Balance().StringFixed(2))
	pause(in)
}

func changePassword(in *bufio.Reader, session *wallet.Session) {
	password := prompt(in, "Ingrese la nueva contraseña: ")
	if password == "" {
		fmt.Println("La contraseña no puede ser vacía.")
		return
	}
	if err := session.ChangePassword(password); err != nil {
		fmt.Println("No se pudo actualizar la contraseña.")
		zap.L().Error("Failed to change password", zap.Error(err))
		return
	}
	fmt.Println("Contraseña actualizada.")
}

func deposit(in *bufio.Reader, session *wallet.Session) {
	raw := prompt(in, "Ingrese el monto a acreditar: ")
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		fmt.Println("Monto inválido.")
		return
	}
	if err := session.Deposit(amount); err != nil {
		if errors.Is(err, ledger.ErrInvalidAmount) {
			fmt.Println("El monto debe ser positivo.")
		} else {
			fmt.Println("No se pudo registrar el ingreso.")
			zap.L().Error("Failed to deposit", zap.Error(err))
		}
		return
	}
	fmt.Printf("Saldo actualizado: $%s\n", session.Balance().StringFixed(2))
}

func showSnapshot(snapshot models.Snapshot) {
	fmt.Println("Estadísticas actuales:")
	fmt.Printf("- Saldo promedio: %s\n", snapshot.AverageBalance.StringFixed(2))
	fmt.Printf("- Total ingresos: %s\n", snapshot.TotalCredit.StringFixed(2))
	fmt.Printf("- Total gastos: %s\n", snapshot.TotalDebit.StringFixed(2))
	fmt.Printf("- Servicio más pagado: %s\n", snapshot.MostPaidService)
}

func runReportsMenu(in *bufio.Reader, session *wallet.Session) {
	for {
		fmt.Println("\n-- Reportes --")
		fmt.Println("1. Mostrar estadísticas en pantalla")
		fmt.Println("2. Exportar reporte CSV")
		fmt.Println("3. Exportar reporte XLSX")
		fmt.Println("4. Volver")

		switch prompt(in, "Seleccione una opción: ") {
		case "1":
			showSnapshot(session.Snapshot())
			pause(in)
		case "2":
			path, err := session.ExportReport()
			if err != nil {
				fmt.Println("No se pudo exportar el reporte.")
				zap.L().Error("Failed to export report", zap.Error(err))
			} else {
				fmt.Printf("Reporte exportado en: %s\n", path)
			}
			pause(in)
		case "3":
			path, err := session.ExportReportXLSX()
			if err != nil {
				fmt.Println("No se pudo exportar el reporte.")
				zap.L().Error("Failed to export report", zap.Error(err))
			} else {
				fmt.Printf("Reporte exportado en: %s\n", path)
			}
			pause(in)
		case "4":
			return
		default:
			fmt.Println("Opción inválida.")
		}
	}
}

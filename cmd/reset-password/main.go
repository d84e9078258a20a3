// Command reset-password sets a new password for an account from the shell,
// for when the admin locks themselves out. It also clears any login lockout
// and rotates the token version so existing sessions die.
package main

import (
	"flag"
	"log"

	"go-gudang-kelurahan/internal/model"
	"go-gudang-kelurahan/pkg/database"
	"go-gudang-kelurahan/pkg/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	email := flag.String("email", "", "email akun yang akan direset")
	password := flag.String("password", "", "password baru")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("pemakaian: reset-password -email <email> -password <password baru>")
	}
	if !validator.StrongPassword(*password) {
		log.Fatal("password minimal 8 karakter dengan huruf besar, huruf kecil, angka dan simbol")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}
	db := database.ConnectDB()

	var user model.User
	if err := db.First(&user, "email = ?", *email).Error; err != nil {
		log.Fatalf("akun %s tidak ditemukan", *email)
	}

	if err := user.SetPassword(*password); err != nil {
		log.Fatal("gagal memproses password: ", err)
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.TokenVersion = uuid.NewString()

	if err := db.Save(&user).Error; err != nil {
		log.Fatal("gagal menyimpan akun: ", err)
	}
	log.Printf("password %s berhasil direset", *email)
}

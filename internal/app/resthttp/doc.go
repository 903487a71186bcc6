// Package resthttp реализует публичный HTTP API сервиса изображений персонажей поверх
// корня хранилища. Основные эндпоинты:
//   - GET /api/getImage?name= — ищет изображение по имени и отдаёт imagePath для статики.
//   - POST /api/upload?name= — принимает multipart-поле image (jpg, jpeg, png, gif, webp; до 5 MiB).
//   - GET /health — число изображений и их суммарный размер.
//   - GET /metrics — метрики Prometheus.
//   - GET /{file} — статическая раздача сохранённых файлов.
package resthttp
